// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes all attempts matching f to w as a YAML list.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, f Filter) error {
	f.Limit = -1
	attempts, err := s.List(ctx, f)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(attempts); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes all attempts matching f to w as an indented JSON array.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, f Filter) error {
	f.Limit = -1
	attempts, err := s.List(ctx, f)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(attempts); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
