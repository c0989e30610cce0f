package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/formbind/internal/formservice"
)

const contractHeader = `# formbind Profile Contract

Forms are edited one field at a time with ` + "`set_field`" + `. Every accepted write
bumps the form version by one and re-runs validation over the whole profile.

## Rules

1. **Values are raw text.** Each field converts the text with its own codec.
   Numbers must fit the field type: ` + "`age`" + ` is a uint8, so 300 is rejected.
2. **Rejected input changes nothing.** The form keeps its previous value and
   version. The rejection is reported on the field until the next accepted write.
3. **Validation never rejects a write.** A value that converts is stored even
   when it breaks a rule; ` + "`validate_form`" + ` lists what still needs fixing.
4. **Lists** (` + "`tags`" + `) are comma separated. Blank items are dropped.
5. **bio** is stripped of HTML.
6. **email** is required once ` + "`newsletter`" + ` is true.
7. Pass ` + "`if_version`" + ` to guard against concurrent edits.

## Fields

| Path | Type |
|------|------|
`

// FieldContract renders the field contract for the given field table.
func FieldContract(fields []formservice.FieldInfo) string {
	var b strings.Builder
	b.WriteString(contractHeader)
	for _, f := range fields {
		fmt.Fprintf(&b, "| `%s` | %s |\n", f.Path, f.Type)
	}
	return b.String()
}
