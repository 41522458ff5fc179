package render

import (
	_ "embed"
)

//go:embed index.html
var indexHTML []byte

// publishedTemplate frames a published snapshot under a thin top strip.
const publishedTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Name}} — Vibe Studio</title>
  <style>` + frameCSS + `</style>
</head>
<body class="published">
  <div class="strip">
    <div>Published: /{{.Name}}</div>
    <a class="btn" href="/">Back to Editor</a>
  </div>
  <iframe title="published-{{.Name}}" srcdoc="{{.HTML}}" sandbox="{{.Sandbox}}"></iframe>
</body>
</html>`

const notPublishedTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Not Published — Vibe Studio</title>
  <style>` + frameCSS + `</style>
</head>
<body class="missing">
  <div class="box">
    <h1>Not Published</h1>
    <p>No page found for “{{.Name}}”.</p>
    <a class="btn primary" href="/">Back to Editor</a>
  </div>
</body>
</html>`

// markdownTemplate wraps rendered markdown so the preview frame gets a
// complete document.
const markdownTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Name}}</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, sans-serif; max-width: 48rem; margin: 0 auto; padding: 2rem; line-height: 1.6; color: #1f2328; }
    pre { padding: 1rem; overflow: auto; border-radius: 6px; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; }
    table { border-collapse: collapse; }
    th, td { border: 1px solid #d0d7de; padding: 4px 10px; }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>`

const frameCSS = `
    * { box-sizing: border-box; }
    body { margin: 0; font-family: Inter, ui-sans-serif, system-ui, -apple-system, sans-serif; }
    .btn { display: inline-block; padding: 4px 12px; border-radius: 6px; background: #374151; color: #e5e7eb; text-decoration: none; }
    .btn:hover { background: #4b5563; }
    .btn.primary { background: #4f46e5; color: #fff; padding: 8px 16px; }
    body.published { background: #000; }
    .strip { display: flex; align-items: center; justify-content: space-between; height: 40px; padding: 0 16px; background: #111827; color: #e5e7eb; font-size: 14px; }
    iframe { display: block; width: 100%; height: calc(100vh - 40px); border: 0; background: #fff; }
    body.missing { min-height: 100vh; display: flex; align-items: center; justify-content: center; background: #030712; color: #e5e7eb; padding: 24px; }
    .box { max-width: 36rem; text-align: center; }
    .box h1 { font-size: 1.5rem; font-weight: 600; margin: 0 0 8px; }
    .box p { opacity: .7; margin: 0 0 24px; }
`
