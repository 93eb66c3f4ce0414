// Package preflight provides readiness checks for the external binaries and
// filesystem paths an export run depends on.
//
// These checks run in two contexts:
//   - The export command calls RunAll before starting a run. If a required
//     check fails, the run aborts before any asset is downloaded or trimmed.
//   - The CLI "reelpress probe" command displays the same checks as a table.
package preflight
