package acl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bramblewiki/bramble/pkg/principal"
)

// directivePattern matches access-control markup of the form
// [{ALLOW action principal, principal}] embedded in page text.
var directivePattern = regexp.MustCompile(`\[\{\s*(ALLOW|DENY)\s+(\S+)\s+([^}]+?)\s*\}\]`)

// Resolver turns a bare principal name into a typed principal. The registry
// satisfies this; tests may pass a simpler function.
type Resolver func(name string) principal.Principal

// Parse extracts ALLOW directives from page text and builds the page's ACL.
// Principal names are resolved through resolve; names that resolve to
// nothing known still produce entries (as unresolved principals) so that
// ACL text referencing not-yet-existing accounts survives and matches once
// the account appears.
//
// DENY directives are not supported and fail parsing, matching the save-time
// validation of the page layer.
func Parse(text string, resolve Resolver) (*Acl, error) {
	acl := New()
	for _, m := range directivePattern.FindAllStringSubmatch(text, -1) {
		verb, action, names := m[1], m[2], m[3]
		if verb == "DENY" {
			return nil, fmt.Errorf("DENY rules are not supported: %q", m[0])
		}
		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			acl.Add(Entry{
				Principal: resolve(name),
				Actions:   []string{action},
			})
		}
	}
	return acl, nil
}
