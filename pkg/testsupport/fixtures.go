package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadGolden decodes the JSON golden file at path into v, failing t when the
// file is missing or malformed. Unknown keys fail too, so a renamed snapshot
// field shows up as a broken golden file.
func LoadGolden(t testing.TB, path string, v any) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open golden %s: %v", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
}
