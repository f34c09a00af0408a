// Package pagination resolves "next page" links for the two catalog
// pagination schemes.
//
// Both resolvers are pure functions over (html, currentURL). Hrefs are
// resolved against the current page URL, never against a fixed site
// root, so deep pagination chains resolve correctly at any depth.
package pagination
