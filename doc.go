// Package twbridge serves utility-class language intelligence from a single
// long-lived compiler.
//
// A Service owns a worker goroutine that holds the compiled stylesheet and
// the design system derived from it. Editor requests (completion, hover,
// diagnostics, colors, code actions) are answered against that state; CSS
// builds go through a Bridge that returns the previous result while the
// stylesheet is unchanged and the requested classes are a subset of the
// previous request.
//
//	svc := twbridge.New(ctx, twbridge.Config{})
//	defer svc.Close()
//
//	result, err := svc.BuildCSS(ctx, `@import "tailwindcss";`, []string{"flex", "p-4"}, nil)
//
// # Documents
//
// Language features work on documents registered with OpenDocument and kept
// current with UpdateDocument:
//
//	svc.OpenDocument("file:///index.html", "html", 1, text)
//	diagnostics, err := svc.DoValidate(ctx, "file:///index.html")
package twbridge
