// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/invowk/autolink/pkg/cueutil"
)

// normalizeJSON reads data with JSON.parse semantics before it reaches CUE:
// a repeated key keeps its last value and object members set to null are
// dropped, so both read as absent fields. Numbers keep their literal text.
func normalizeJSON(data []byte, filename string) ([]byte, error) {
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, filename); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: unexpected data after top-level value", filename)
	}

	return json.Marshal(dropNulls(doc))
}

func dropNulls(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if child == nil {
				delete(v, k)
				continue
			}
			v[k] = dropNulls(child)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = dropNulls(child)
		}
		return v
	default:
		return v
	}
}
