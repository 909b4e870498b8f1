// Package media retrieves a video referenced by URL.
//
// A URL may point at the media itself or at an HTML page that embeds it in
// a <video> element. In the second case the first <video> element's src
// (or its first <source src>) is resolved against the page URL and
// fetched. The fetcher streams bytes to the caller and never touches disk.
package media
