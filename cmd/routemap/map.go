package main

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
)

// View model for one route line on the map.
type routeView struct {
	ID          string
	Name        string
	DurationMin float64
	StaticMin   float64
	DelayMin    float64
	DistanceKm  float64
	Color       string
	Path        [][]float64
	Failed      bool
}

type mapLine struct {
	Path   [][]float64 `json:"path"`
	Color  string      `json:"color"`
	Dashed bool        `json:"dashed"`
	Popup  string      `json:"popup"`
}

const mapTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Route traffic map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var lines = {{.Lines}};
var map = L.map('map');
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var group = L.featureGroup();
lines.forEach(function (line) {
  L.polyline(line.path, {
    color: line.color,
    weight: 4,
    dashArray: line.dashed ? '8 8' : null
  }).bindPopup(line.popup).addTo(group);
});
group.addTo(map);
map.fitBounds(group.getBounds().pad(0.1));
</script>
</body>
</html>
`

// Render the Leaflet map for all route views into an HTML file.
func renderMap(path string, views []routeView) error {
	lines := make([]mapLine, 0, len(views))
	for _, v := range views {
		color := v.Color
		if v.Failed {
			color = "gray"
		}
		lines = append(lines, mapLine{
			Path:   v.Path,
			Color:  color,
			Dashed: v.Failed,
			Popup:  popupText(v),
		})
	}

	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("render map: marshal lines: %w", err)
	}

	tmpl, err := template.New("map").Parse(mapTemplate)
	if err != nil {
		return fmt.Errorf("render map: parse template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render map: create %q: %w", path, err)
	}
	defer f.Close()

	data := struct{ Lines template.JS }{Lines: template.JS(payload)}
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render map: execute template: %w", err)
	}

	return nil
}
