package main

import (
	"fmt"
	"log"
	"regexp"
	"strings"
)

// ArtifactSet maps the fixed artifact roles to extracted content. An empty
// string means the role was absent from the response, not that parsing
// failed.
type ArtifactSet struct {
	Markup string
	Style  string
	Script string
}

// Empty reports whether no role was found at all.
func (a ArtifactSet) Empty() bool {
	return a.Markup == "" && a.Style == "" && a.Script == ""
}

// Partial reports whether some but not all roles were found.
func (a ArtifactSet) Partial() bool {
	return !a.Empty() && (a.Markup == "" || a.Style == "" || a.Script == "")
}

type artifactRole struct {
	name     string
	filename string
	// language tag alternatives, most specific family first
	langs string
}

var artifactRoles = []artifactRole{
	{name: "markup", filename: `index\.html`, langs: `html|htm`},
	{name: "style", filename: `style\.css`, langs: `css`},
	{name: "script", filename: `script\.js`, langs: `javascript|js`},
}

// ParseArtifacts extracts the role-tagged fenced code blocks from a raw
// generation response. Pass one looks for blocks annotated with the role's
// filename; if a role is missing, pass two falls back to the first generic
// block of the matching language family. Missing roles yield empty strings.
func ParseArtifacts(raw string) ArtifactSet {
	contents := make(map[string]string, len(artifactRoles))
	for _, role := range artifactRoles {
		content := findTaggedBlock(raw, role)
		if content == "" {
			content = findGenericBlock(raw, role)
		}
		contents[role.name] = content
		if content == "" {
			log.Printf("Warning: %s artifact not found in generation output", role.name)
		}
	}

	set := ArtifactSet{
		Markup: contents["markup"],
		Style:  contents["style"],
		Script: contents["script"],
	}
	if set.Empty() {
		log.Printf("Warning: no recognizable artifacts in generation output")
	} else if set.Partial() {
		log.Printf("Warning: only some artifacts found in generation output")
	}
	return set
}

// findTaggedBlock matches a fenced block annotated with the role's
// filename: case-insensitive language tag, flexible spacing around "=",
// either quote style.
func findTaggedBlock(raw string, role artifactRole) string {
	pattern := fmt.Sprintf("(?is)```(?:%s)\\s*filename\\s*=\\s*['\"]%s['\"]\\s*\\n(.*?)\\n\\s*```", role.langs, role.filename)
	return firstSubmatch(pattern, raw)
}

// findGenericBlock is the explicit fallback pass: the first fenced block
// whose language tag belongs to the role's coarse language family, without
// any filename annotation.
func findGenericBlock(raw string, role artifactRole) string {
	pattern := fmt.Sprintf("(?is)```(?:%s)\\s*\\n(.*?)\\n\\s*```", role.langs)
	return firstSubmatch(pattern, raw)
}

func firstSubmatch(pattern, raw string) string {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
