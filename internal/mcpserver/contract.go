package mcpserver

// InputGrammar describes the free-text input accepted by add_entry and the
// date phrases accepted by the other tools.
const InputGrammar = `# Journal Input Grammar

Every input starts with a date phrase. Anything after it is the memo;
words starting with ` + "`#`" + ` are flags.

## Date phrases

| Phrase | Meaning |
|---|---|
| ` + "`today`, `tomorrow`, `yesterday`" + ` | offset 0, +1, -1 |
| ` + "`+3`, `-2`, `5`" + ` | days from today (unsigned means forward) |
| ` + "`wed`, `next wed`" + ` | the next Wednesday, 1 to 7 days ahead |
| ` + "`last wed`" + ` | the previous Wednesday, 1 to 7 days back |
| ` + "`friday this week`, `mon last week`, `sun next week`" + ` | weekday of an ISO week (Monday first) |
| ` + "`2024-01-31`" + ` | an absolute date |
| ` + "`02-29`" + ` | month and day in the current year |

Weekday names may be abbreviated to three letters. An unknown first word is
an error and nothing is written.

## Flags

- ` + "`#task`" + ` uses the task template: ` + "`- [ ] <memo>`" + ` under ` + "`## Tasks`" + `.
- Any flag with a matching ` + "`entry.<flag>`" + ` template selects that template.
- Other flags are kept in the memo as tags.

## Pages

Pages live at ` + "`YYYY/MM/DD.md`" + `; files placed in the sibling folder
` + "`YYYY/MM/DD/`" + ` are linked from the page under ` + "`## Notes`" + ` by sync_page.

## Example

` + "```" + `
tomorrow call the dentist #task
last fri retro went well #work
2024-03-01
` + "```" + `
`
