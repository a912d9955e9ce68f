package mcpserver

// NoteFormat describes the note fields and the accepted priority values
// for LLM consumers.
const NoteFormat = `# Note Format

A note has four fields:

| Field       | Type    | Notes                                          |
|-------------|---------|------------------------------------------------|
| id          | integer | Assigned on create. Never reused after delete. |
| title       | string  | Free text.                                     |
| description | string  | Free text.                                     |
| priority    | enum    | HIGH, MEDIUM or LOW.                           |

## Rules

1. A note needs a non-blank title or a non-blank description. Both blank is rejected
   with "Tolong di Isi Semua Persyaratannya".
2. **priority** accepts the picker labels ` + "`High Priority`, `Medium Priority`, `Low Priority`" + `
   or the bare levels ` + "`high`, `medium`, `low`" + ` (case-insensitive). Anything else is rejected.
3. Listing without arguments returns notes in creation order.
   ` + "`query`" + ` keeps notes whose title or description contains the text (ASCII case-insensitive).
   ` + "`sort`" + ` is ` + "`high`" + ` (highest priority first) or ` + "`low`" + `; ties keep creation order.
   ` + "`query`" + ` and ` + "`sort`" + ` cannot be combined.
4. Deleting returns the removed note. To undo, create it again; it gets a new id.
5. ` + "`delete_all_notes`" + ` removes everything and requires ` + "`confirm: true`" + `.

## Example

` + "```" + `json
{"id": 7, "title": "Fix bug", "description": "crash on start", "priority": "HIGH",
 "priority_label": "High Priority", "version": "3f2a..."}
` + "```" + `
`
