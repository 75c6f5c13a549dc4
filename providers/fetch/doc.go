// Package fetch reads web pages as Markdown. Workflow nodes use a [Reader]
// to pull a page's text into the state record before handing it to the model.
package fetch
