package cmd

const DESCRIPTION = `
cookiewatch inspects the cookies a website leaves in your browser,
sorts them into Essential, Preference, Analytics and Tracking,
rates how risky each one is and grades the site's overall privacy.
It can delete the cookies you don't want and keep them from
coming back.
`

const (
	ScanDescription = `The scan command loads a page in a browser driven over
the DevTools protocol and collects every cookie visible to the page,
its resources and its frames. The result is graded from A to F.

Example:
        cookiewatch scan https://example.com
        cookiewatch scan --json https://example.com

`
	AuditDescription = `The audit command reads a cookie file from disk instead of a
live browser. It understands Chrome and Firefox cookie databases and
Netscape cookies.txt exports. Without --file the default profile of
an installed browser is used. Without a URL every cookie in the file
is graded.

Example:
        cookiewatch audit https://example.com
        cookiewatch audit --file cookies.txt

`
	DeleteDescription = `The delete command scans a page and removes its cookies.
Essential and Unknown cookies are kept unless --force is given.
With --guard the deleted cookies are watched and removed again if the
site writes them back before the guard window ends.

Example:
        cookiewatch delete https://example.com
        cookiewatch delete --category Tracking,Analytics https://example.com

`
	ClassifyDescription = `The classify command prints the category of each cookie name.

Example:
        cookiewatch classify _ga _fbp PHPSESSID

`
	StreakDescription = `The streak command records today's visit and prints
the number of consecutive days cookiewatch has been used along with the
milestone progress.

Example:
        cookiewatch streak

`
	DaemonDescription = `The daemon command serves the cookie pipeline over JSON-RPC 2.0
on the loopback interface, both as plain HTTP at /jsonrpc and over a
WebSocket at /jsonrpc/ws. Every request must carry the secret set in
COOKIEWATCH_RPC_SECRET. The daemon keeps a browser open and guards
deleted cookies against regeneration.

Example:
        COOKIEWATCH_RPC_SECRET=s3cret cookiewatch daemon

`
)

const HELP_TEMPL = `Usage: {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCategories}}{{if .Name}}

{{.Name}}:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{else}}{{range .VisibleCommands}}
{{"\t"}}{{index .Names 0}}{{"\t:\t"}}{{.Usage}}{{end}}{{end}}{{end}}{{end}}{{if .VisibleFlags}}

Global Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Use "{{.HelpName}} help <command>" for more information about any command.

`

const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}} - {{.Usage}}

{{end}}Usage:
        {{.HelpName}} {{if .UsageText}}{{.UsageText}}{{else}}[arguments...]{{end}}{{if .VisibleFlags}}

Supported Flags:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
