// Package platform contains OS integration: the downloads directory, revealing
// and opening saved files, and HTML page inspection for media links.
package platform
