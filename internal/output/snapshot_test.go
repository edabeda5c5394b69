package output

import (
	"testing"
)

func TestNormalizeForSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name: "remove loadedAt",
			input: `{
				"data": ["class:Specimen"],
				"meta": {
					"provenance": {
						"loadedAt": "2026-01-01T00:00:00Z",
						"source": "snapshot"
					}
				}
			}`,
			want: `{"data":["class:Specimen"],"meta":{"provenance":{"source":"snapshot"}}}`,
		},
		{
			name: "remove snapshotAge",
			input: `{
				"data": "ok",
				"meta": {
					"freshness": {
						"snapshotAge": "2m30s",
						"stale": true
					}
				}
			}`,
			want: `{"data":"ok","meta":{"freshness":{"stale":true}}}`,
		},
		{
			name: "remove cache age",
			input: `{
				"data": "ok",
				"meta": {
					"cache": {
						"age": "15s",
						"hit": true
					}
				}
			}`,
			want: `{"data":"ok","meta":{"cache":{"hit":true}}}`,
		},
		{
			name: "remove all time-varying fields",
			input: `{
				"data": "ok",
				"meta": {
					"provenance": {
						"loadedAt": "2026-01-01T00:00:00Z",
						"source": "processed"
					},
					"freshness": {
						"snapshotAge": "1h",
						"stale": false
					},
					"cache": {
						"age": "2s",
						"hit": true
					}
				}
			}`,
			want: `{"data":"ok","meta":{"cache":{"hit":true},"freshness":{"stale":false},"provenance":{"source":"processed"}}}`,
		},
		{
			name: "no meta block",
			input: `{
				"data": "ok",
				"result": "success"
			}`,
			want: `{"data":"ok","result":"success"}`,
		},
		{
			name:    "invalid JSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeForSnapshot([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeForSnapshot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && string(got) != tt.want {
				t.Errorf("NormalizeForSnapshot() = %s, want %s", string(got), tt.want)
			}
		})
	}
}

func TestCompareSnapshots(t *testing.T) {
	tests := []struct {
		name      string
		a         string
		b         string
		wantEqual bool
		wantMsg   string
	}{
		{
			name: "identical after normalization",
			a: `{
				"data": "ok",
				"meta": {
					"provenance": {
						"loadedAt": "2026-01-01T00:00:00Z",
						"source": "snapshot"
					}
				}
			}`,
			b: `{
				"data": "ok",
				"meta": {
					"provenance": {
						"loadedAt": "2026-01-02T00:00:00Z",
						"source": "snapshot"
					}
				}
			}`,
			wantEqual: true,
		},
		{
			name:      "different data",
			a:         `{"data": "first"}`,
			b:         `{"data": "second"}`,
			wantEqual: false,
			wantMsg:   "snapshots differ",
		},
		{
			name:      "invalid JSON in a",
			a:         `{invalid}`,
			b:         `{"data": "ok"}`,
			wantEqual: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equal, msg := CompareSnapshots([]byte(tt.a), []byte(tt.b))
			if equal != tt.wantEqual {
				t.Errorf("CompareSnapshots() equal = %v, want %v (msg: %s)", equal, tt.wantEqual, msg)
			}
			if tt.wantMsg != "" && msg != tt.wantMsg {
				t.Errorf("CompareSnapshots() msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestSnapshotEqual(t *testing.T) {
	type response struct {
		Data string                 `json:"data"`
		Meta map[string]interface{} `json:"meta,omitempty"`
	}

	a := response{Data: "ok", Meta: map[string]interface{}{
		"cache": map[string]interface{}{"hit": true, "age": "1s"},
	}}
	b := response{Data: "ok", Meta: map[string]interface{}{
		"cache": map[string]interface{}{"hit": true, "age": "9m"},
	}}
	c := response{Data: "different"}

	if !SnapshotEqual(a, b) {
		t.Error("SnapshotEqual should ignore cache age")
	}
	if SnapshotEqual(a, c) {
		t.Error("SnapshotEqual should detect different data")
	}
}

func TestRemoveNestedField(t *testing.T) {
	data := map[string]interface{}{
		"meta": map[string]interface{}{
			"provenance": map[string]interface{}{
				"loadedAt": "2026-01-01T00:00:00Z",
				"source":   "snapshot",
			},
		},
	}

	removeNestedField(data, "meta.provenance.loadedAt")

	meta := data["meta"].(map[string]interface{})
	prov := meta["provenance"].(map[string]interface{})
	if _, ok := prov["loadedAt"]; ok {
		t.Error("loadedAt should have been removed")
	}
	if prov["source"] != "snapshot" {
		t.Error("source should be untouched")
	}

	// Missing paths are a no-op.
	removeNestedField(data, "meta.missing.field")
	removeNestedField(data, "")
}
