// Command stampcli reads one stamp request as JSON on stdin and writes the
// rendered result as JSON on stdout, mirroring example/main.go's
// "build a context, render, write output" shape. JSON framing, filesystem
// sinks, and the filename/url save path are thin external adapters outside
// the engine's scope; this demonstrator only exercises the base64-data leg.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/c3ll256/stampengine/pkg/stampengine"
)

type wireTemplate struct {
	Width               int                `json:"width"`
	Height              int                `json:"height"`
	BackgroundImagePath string             `json:"backgroundImagePath"`
	TextElements        []wireTextElement  `json:"textElements"`
}

type wirePosition struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Rotation         float64 `json:"rotation"`
	TextAlign        string  `json:"textAlign"`
	VerticalAlign    string  `json:"verticalAlign"`
	LetterSpacing    float64 `json:"letterSpacing"`
	IsCircular       bool    `json:"isCircular"`
	Radius           float64 `json:"radius"`
	BaseAngle        float64 `json:"baseAngle"`
	MaxAngle         float64 `json:"maxAngle"`
	LayoutMode       string  `json:"layoutMode"`
	BaselinePosition string  `json:"baselinePosition"`
}

type wireTextElement struct {
	ID                   string             `json:"id"`
	Value                string             `json:"value"`
	FontFamily           string             `json:"fontFamily"`
	FontSize             float64            `json:"fontSize"`
	Color                string             `json:"color"`
	FontWeight           string             `json:"fontWeight"`
	VariableFontSettings map[string]float64 `json:"variableFontSettings"`
	FirstVariant         *int               `json:"firstVariant"`
	LastVariant          *int               `json:"lastVariant"`
	IsUppercase          bool               `json:"isUppercase"`
	AutoBold             bool               `json:"autoBold"`
	TextPadding          *float64           `json:"textPadding"`
	Position             wirePosition       `json:"position"`
}

type wireRequest struct {
	Template     wireTemplate      `json:"template"`
	TextElements []wireTextElement `json:"textElements"`
	FontMapping  map[string]string `json:"fontMapping"`
}

type wireAdjustment struct {
	OriginalSize       float64 `json:"originalSize"`
	ScaledSize         float64 `json:"scaledSize"`
	FinalSize          float64 `json:"finalSize"`
	ScaleFactorApplied float64 `json:"scaleFactorApplied"`
	TextScaleFactor    float64 `json:"textScaleFactor"`
	Reason             string  `json:"reason"`
}

type wireResponse struct {
	Success            bool                      `json:"success"`
	Data               string                    `json:"data,omitempty"`
	Error              string                    `json:"error,omitempty"`
	FontSizeAdjustments map[string]wireAdjustment `json:"fontSizeAdjustments,omitempty"`
}

func main() {
	raw, err := io.ReadAll(os.Stdin)
	if err != nil {
		writeResponse(wireResponse{Success: false, Error: "read stdin: " + err.Error()})
		return
	}

	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeResponse(wireResponse{Success: false, Error: "invalid request JSON: " + err.Error()})
		return
	}

	elements, err := decodeElements(req)
	if err != nil {
		writeResponse(wireResponse{Success: false, Error: err.Error()})
		return
	}

	stampReq := &stampengine.StampRequest{
		Width:           req.Template.Width,
		Height:          req.Template.Height,
		BackgroundImage: req.Template.BackgroundImagePath,
		FontMapping:     req.FontMapping,
		InstancerDir:    filepath.Join(os.TempDir(), "stampengine-instances"),
		Elements:        elements,
	}
	result, err := stampengine.NewOrchestrator(stampReq).Generate(stampReq)
	if err != nil {
		writeResponse(wireResponse{Success: false, Error: err.Error()})
		return
	}

	data, err := encodePNG(result.Canvas)
	if err != nil {
		writeResponse(wireResponse{Success: false, Error: "encode PNG: " + err.Error()})
		return
	}

	resp := wireResponse{Success: true, Data: base64.StdEncoding.EncodeToString(data)}
	if len(result.Adjustments) > 0 {
		resp.FontSizeAdjustments = make(map[string]wireAdjustment, len(result.Adjustments))
		for id, adj := range result.Adjustments {
			resp.FontSizeAdjustments[id] = wireAdjustment{
				OriginalSize:       adj.OriginalSize,
				ScaledSize:         adj.ScaledSize,
				FinalSize:          adj.FinalSize,
				ScaleFactorApplied: adj.ScaleFactorApplied,
				TextScaleFactor:    adj.TextScaleFactor,
				Reason:             string(adj.Reason),
			}
		}
	}
	writeResponse(resp)
}

// decodeElements merges each request-level element over its matching
// template element (by id): font family, font size, color and position are
// taken from the template when the request left them zero-valued; every
// other field comes from the request element only. Grounded on
// generate()'s `template_element.get(...)` fallback chain.
func decodeElements(req wireRequest) ([]stampengine.TextElement, error) {
	byID := make(map[string]wireTextElement, len(req.Template.TextElements))
	for _, t := range req.Template.TextElements {
		byID[t.ID] = t
	}

	out := make([]stampengine.TextElement, 0, len(req.TextElements))
	for _, w := range req.TextElements {
		if tpl, ok := byID[w.ID]; ok {
			mergeWireElement(&w, tpl)
		}

		color, err := stampengine.ColorFromHex(orDefault(w.Color, "#000000"))
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", w.ID, err)
		}

		out = append(out, stampengine.TextElement{
			ID:                   w.ID,
			Value:                w.Value,
			FontFamily:           orDefault(w.FontFamily, "Arial"),
			FontSize:             orDefaultFloat(w.FontSize, 16),
			Color:                color,
			FontWeight:           w.FontWeight,
			VariableFontSettings: w.VariableFontSettings,
			FirstVariant:         w.FirstVariant,
			LastVariant:          w.LastVariant,
			AutoBold:             w.AutoBold,
			TextPadding:          w.TextPadding,
			IsUppercase:          w.IsUppercase,
			Position:             decodePosition(w.Position),
		})
	}
	return out, nil
}

func mergeWireElement(w *wireTextElement, tpl wireTextElement) {
	if w.FontFamily == "" {
		w.FontFamily = tpl.FontFamily
	}
	if w.FontSize == 0 {
		w.FontSize = tpl.FontSize
	}
	if w.Color == "" {
		w.Color = tpl.Color
	}
	if w.Position == (wirePosition{}) {
		w.Position = tpl.Position
	}
}

func decodePosition(p wirePosition) stampengine.Position {
	return stampengine.Position{
		X:                p.X,
		Y:                p.Y,
		Rotation:         p.Rotation,
		TextAlign:        stampengine.TextAlign(orDefault(p.TextAlign, "left")),
		VerticalAlign:    stampengine.VerticalAlign(orDefault(p.VerticalAlign, "baseline")),
		LetterSpacing:    p.LetterSpacing,
		IsCircular:       p.IsCircular,
		Radius:           p.Radius,
		BaseAngle:        p.BaseAngle,
		LayoutMode:       stampengine.LayoutMode(orDefault(p.LayoutMode, "startAligned")),
		BaselinePosition: stampengine.BaselinePosition(orDefault(p.BaselinePosition, "inside")),
		MaxAngle:         p.MaxAngle,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func encodePNG(canvas *stampengine.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeResponse(resp wireResponse) {
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(resp)
}
