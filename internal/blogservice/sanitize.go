package blogservice

import "github.com/microcosm-cc/bluemonday"

// bodyPolicy allows the formatting an editor produces (headings, lists,
// links, images, tables) and drops scripts, event handlers, inline frames and
// non-http(s) URLs.
var bodyPolicy = newBodyPolicy()

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(false)
	return p
}

// sanitizeBody reduces post markup to the body policy before it is stored.
func sanitizeBody(body string) string {
	return bodyPolicy.Sanitize(body)
}
