package stampengine

import (
	"fmt"
	"log"
)

// StampRequest is the declarative input to Generate: canvas dimensions, an
// optional background image, the elements to draw, and the fonts available
// to resolve FontFamily/FontWeight against. Grounded on PNGStampGenerator's
// __init__ (width/height/background_image/font_mapping/text_elements).
type StampRequest struct {
	Width            int
	Height           int
	BackgroundImage  string // path; empty means no background
	FontMapping      map[string]string
	InstancerDir     string // scratch dir for VariableInstancer; "" disables instancing
	Elements         []TextElement
}

// StampResult is Generate's output: the rendered canvas plus the
// per-element font size adjustments the fit loops applied, mirroring
// generate()'s (data, error, font_size_adjustments) return triple — the
// error leg is reported per element in Warnings rather than aborting the
// whole batch.
type StampResult struct {
	Canvas      *Canvas
	Adjustments map[string]*FontAdjustment
	Warnings    []ElementWarning
}

// ElementWarning records a recoverable failure for one element, grounded on
// generate()'s `except Exception as e: logger.error(...); continue` per
// text element.
type ElementWarning struct {
	ElementID string
	Err       error
}

// Orchestrator wires together the font registry, shaper, and variable-font
// instancer into a single request-processing entry point.
type Orchestrator struct {
	Registry  *FontRegistry
	Shaper    *Shaper
	Instancer *VariableInstancer
}

// NewOrchestrator builds an Orchestrator from a request's font mapping and
// scratch directory. If req.InstancerDir is empty, variable font axis
// settings are ignored: no instance file is written and elements render
// with the face as resolved.
func NewOrchestrator(req *StampRequest) *Orchestrator {
	o := &Orchestrator{
		Registry: NewFontRegistry(req.FontMapping),
		Shaper:   NewShaper(),
	}
	if req.InstancerDir != "" {
		o.Instancer = NewVariableInstancer(req.InstancerDir)
	}
	return o
}

// Generate renders req onto a freshly allocated, auto-scaled canvas: the
// optional background image first, then every text element in order,
// swallowing per-element errors into Warnings and continuing — the same
// resilience generate() gives its text_elements loop — then sharpens the
// result if the canvas was upscaled. Grounded on PNGStampGenerator.generate().
func (o *Orchestrator) Generate(req *StampRequest) (*StampResult, error) {
	canvas := NewCanvas(req.Width, req.Height)
	result := &StampResult{
		Canvas:      canvas,
		Adjustments: make(map[string]*FontAdjustment),
	}

	if req.BackgroundImage != "" {
		if err := LoadBackground(canvas, req.BackgroundImage); err != nil {
			result.Warnings = append(result.Warnings, ElementWarning{ElementID: "$background", Err: err})
		}
	}

	for i := range req.Elements {
		el := &req.Elements[i]
		if el.Value == "" {
			continue
		}

		adj, err := o.renderElement(canvas, el)
		if err != nil {
			log.Printf("stampengine: element %q: %v", el.ID, err)
			result.Warnings = append(result.Warnings, ElementWarning{ElementID: el.ID, Err: err})
			continue
		}
		if adj != nil {
			result.Adjustments[el.ID] = adj
		}
	}

	Sharpen(canvas)

	return result, nil
}

// renderElement resolves el's face (instancing it first if it carries
// VariableFontSettings) and dispatches to the circular, glyph-variant, or
// linear renderer depending on which attributes el sets, grounded on
// _draw_text_with_pil's branch order: circular position first, then
// first/lastVariant, then the plain fit-to-width path.
func (o *Orchestrator) renderElement(canvas *Canvas, el *TextElement) (*FontAdjustment, error) {
	rec := o.Registry.Resolve(el.FontFamily, el.FontWeight)
	if rec == nil {
		return nil, newError(ErrNoFontsAvailable, fmt.Sprintf("no face resolved for %q", el.FontFamily))
	}

	rec = o.instancedRecord(rec, el)

	adj, err := o.dispatch(canvas, el, rec)
	if err == nil {
		return adj, nil
	}

	// Fall back to the system default face at the same position, grounded
	// on _draw_text_with_pil's outer except that retries with Arial rather
	// than dropping the element entirely.
	fallback := o.Registry.fallback()
	if fallback == nil || fallback == rec {
		return nil, err
	}
	log.Printf("stampengine: element %q: %v; retrying with default font", el.ID, err)
	return o.dispatch(canvas, el, fallback)
}

func (o *Orchestrator) dispatch(canvas *Canvas, el *TextElement, rec *FontRecord) (*FontAdjustment, error) {
	switch {
	case el.Position.IsCircular:
		return RenderCircular(canvas, el, rec, o.Shaper)
	case el.FirstVariant != nil || el.LastVariant != nil:
		return RenderVariants(canvas, el, rec, o.Shaper)
	default:
		return RenderLinear(canvas, el, rec, o.Shaper)
	}
}

// instancedRecord returns a FontRecord pointing at a materialized static
// instance when el requests variable-font axes and the registry's face for
// el.FontFamily is actually variable; otherwise it returns rec unchanged.
// When el carries no explicit VariableFontSettings, a wght axis is derived
// from FontWeight/AutoBold instead, grounded on the generate() branch that
// sets `variable_settings = {'wght': wght_value}` from font_weight when no
// explicit variableFontSettings was given, with autoBold forcing weight
// "bold" (700) upstream of that derivation. A failed instancing attempt
// falls back to rendering with rec's original (un-instanced) face rather
// than failing the element, matching _create_instance_of_variable_font's
// fallback-on-error behavior.
func (o *Orchestrator) instancedRecord(rec *FontRecord, el *TextElement) *FontRecord {
	if o.Instancer == nil || !rec.IsVariable {
		return rec
	}

	settings := el.VariableFontSettings
	if len(settings) == 0 {
		wght, ok := derivedWeightAxis(el)
		if !ok {
			return rec
		}
		settings = map[string]float64{"wght": wght}
	}

	path, err := o.Instancer.Instantiate(rec, settings)
	if err != nil || path == rec.Path {
		return rec
	}

	return &FontRecord{
		Family:     rec.Family,
		Path:       path,
		IsVariable: rec.IsVariable,
		Axes:       rec.Axes,
	}
}

// derivedWeightAxis computes a wght axis value from el.FontWeight, or forces
// 700 ("bold") when el.AutoBold is set, matching generate()'s
// `if element.get('autoBold', False): font_weight = 'bold'` override that
// runs before the variable_settings-from-font_weight derivation.
func derivedWeightAxis(el *TextElement) (float64, bool) {
	if el.AutoBold {
		return 700, true
	}
	w, ok := parseWeight(el.FontWeight)
	if !ok {
		return 0, false
	}
	return float64(w), true
}
