package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bsaid97/go-buffer-overlap/shapefile"
)

// WriteArtifacts persists one record's overlap and buffer collections as
// GeoJSON files under dir, named by the record's file fields. With
// withShapefile set, the overlap pieces are also written as a shapefile
// next to the overlap GeoJSON.
func WriteArtifacts(dir string, rec *Record, withShapefile bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, rec.OverlapFile), rec.OverlapGeoJSON); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, rec.BufferFile), rec.BufferGeoJSON); err != nil {
		return err
	}
	if withShapefile {
		name := strings.TrimSuffix(rec.OverlapFile, ".geojson") + ".shp"
		if _, err := shapefile.WritePieces(filepath.Join(dir, name), rec.OverlapGeoJSON); err != nil {
			return fmt.Errorf("write shapefile: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
