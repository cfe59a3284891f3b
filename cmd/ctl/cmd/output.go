package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Record pairs a UID with the UUID it was derived from.
type Record struct {
	UUID string `json:"uuid" yaml:"uuid"`
	UID  string `json:"uid" yaml:"uid"`
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unknown format %q (text|json|yaml)", format)
	}
}

// writeRecords renders recs as one UID per line (text), a JSON array or a YAML sequence.
func writeRecords(w io.Writer, format string, recs []Record) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "text":
		for _, r := range recs {
			if _, err := fmt.Fprintln(w, r.UID); err != nil {
				return err
			}
		}
		return nil
	default:
		return checkFormat(format)
	}
}
