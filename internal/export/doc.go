// Package export writes reconstructed stimulus movies to disk as MJPEG AVI
// files and summarizes their per-frame luminance as PNG plots and HTML
// charts.
package export
