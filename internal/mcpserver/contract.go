package mcpserver

import (
	"strings"

	"github.com/starford/jrnl/internal/schema"
)

const fence = "```"

const contractTemplate = `# Journal Entry Format

Every entry is a UTF-8 Markdown file with this layout:

FENCEmarkdown
# Title of the entry

FENCEjson
{
  "date": "2024-03-08T09:15:00+01:00",
  "title": "Title of the entry",
  "filename": "2024-03-08_Fr_title_of_the_entry.md",
  "tags": ["daily"]
}
FENCE

Body text in free-form Markdown.
FENCE

## Rules

1. Only blank lines and a single "# Title" line may precede the header.
2. The header opens with a line that is exactly FENCEjson and closes with the
   first line that is exactly FENCE. Everything after the closing line is the body.
3. The header is a JSON object with "date", "title" and "filename"; "tags" is
   optional. No other keys are allowed.
4. "date" is an RFC 3339 timestamp with an offset.
5. "filename" is YYYY-MM-DD_<weekday>[_slug].md, where the date and the weekday
   (Su Mo Tu We Th Fr Sa) come from "date" in its own offset and the slug is a
   whole-word prefix of the lower-cased, underscore-joined title.
6. "tags" holds distinct strings.
7. Binary files are never entries.

Prefer the create_entry tool: it derives the date, filename and header for you.

## Header schema

FENCEjson
SCHEMA
FENCE
`

// EntryFormatContract describes the journal entry format for LLM consumers,
// including the header schema in force.
func EntryFormatContract() string {
	r := strings.NewReplacer(
		"FENCE", fence,
		"SCHEMA", strings.TrimSpace(string(schema.Definition())),
	)
	return r.Replace(contractTemplate)
}
