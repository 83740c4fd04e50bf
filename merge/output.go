package merge

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/camden-git/familytreebackend/family"
)

// WriteJSON writes people as the indented id -> person document.
func WriteJSON(w io.Writer, people family.People) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(people); err != nil {
		return fmt.Errorf("failed to encode merged tree: %w", err)
	}
	return nil
}

// WriteJSModule writes people as an ES module whose default export is the tree,
// the format the web client bundles as its initial data.
func WriteJSModule(w io.Writer, people family.People) error {
	data, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode merged tree: %w", err)
	}
	if _, err := fmt.Fprintf(w, "const familyTree = %s;\n\nexport default familyTree;\n", data); err != nil {
		return fmt.Errorf("failed to write module: %w", err)
	}
	return nil
}
