package httpapi

// Landing-page bodies for GET /: an ANSI-coloured variant for terminal
// clients, a plain variant, and an HTML variant for browsers.
const (
	indexPlain = "netqual exporter\n\n" +
		"GET /ping       probe configured targets, render as Prometheus text or JSON\n" +
		"GET /speedtest  measure download/upload throughput, render as Prometheus text or JSON\n"

	indexANSI = "\x1b[1mnetqual exporter\x1b[0m\n\n" +
		"\x1b[36mGET /ping\x1b[0m       probe configured targets, render as Prometheus text or JSON\n" +
		"\x1b[36mGET /speedtest\x1b[0m  measure download/upload throughput, render as Prometheus text or JSON\n"

	indexHTML = "<!doctype html><html><head><title>netqual exporter</title></head><body>" +
		"<h1>netqual exporter</h1>" +
		"<ul>" +
		"<li><code>GET /ping</code> &mdash; probe configured targets</li>" +
		"<li><code>GET /speedtest</code> &mdash; measure download/upload throughput</li>" +
		"</ul>" +
		"</body></html>"
)
