// Package styles holds the visual vocabulary of printed seating plans:
// the role colour table, the legend, and the text fitting helpers shared
// by the SVG and PNG sinks.
package styles
