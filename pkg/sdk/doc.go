// Package ragdesk provides a Go client for a retrieval-augmented query
// backend that streams its answers.
//
// The backend exposes three endpoints: POST /query streams the answer as
// plain text, GET /query_status reports whether a query is in flight, and
// POST /upload_pdf indexes a document.
//
//	client, _ := ragdesk.New("http://localhost:8000")
//	err := client.Ask(ctx, "What is 2+2?", func(chunk string) {
//	    fmt.Print(chunk)
//	})
//
//	busy, _ := client.Busy(ctx)
//	msg, _ := client.Upload(ctx, "manual.pdf")
package ragdesk
