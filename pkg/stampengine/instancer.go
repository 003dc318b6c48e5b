package stampengine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// VariableInstancer materializes a cached, content-addressed static
// instance of a variable face at specific axis values, grounded on
// _create_instance_of_variable_font / _register_temp_font.
//
// The example corpus carries no variable-font compiler (no fontTools
// analogue), so "materializing a static instance" here means: persist the
// original face bytes under the axis-addressed name (idempotent, atomic
// rename from a temp file, exactly like the reference's
// "if instance already exists, reuse it" check). The instance file is a
// byte-for-byte copy of the source face: the axis values are not applied
// to its outlines, no coordinates are recorded beside it, and Shaper
// renders it at the face's default variation position. See SPEC_FULL.md's
// VariableInstancer entry for the rationale.
type VariableInstancer struct {
	scratchDir string
	mu         sync.Mutex
	cache      map[string]string // cache key -> instance path
}

// NewVariableInstancer creates an instancer backed by scratchDir (created on demand).
func NewVariableInstancer(scratchDir string) *VariableInstancer {
	return &VariableInstancer{scratchDir: scratchDir, cache: make(map[string]string)}
}

// instanceKey builds the deterministic, sorted cache key for (path, axes).
func instanceKey(path string, axes map[string]float64) string {
	tags := make([]string, 0, len(axes))
	for t := range axes {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	var b strings.Builder
	b.WriteString(path)
	for _, t := range tags {
		fmt.Fprintf(&b, "|%s=%g", t, axes[t])
	}
	return b.String()
}

// instanceFileName encodes the sorted axis values into the instance's file
// name, e.g. "Montserrat-wght700.ttf", matching the reference's
// f"{basename}-{tag}{val}...{ext}" construction.
func instanceFileName(path string, axes map[string]float64) string {
	tags := make([]string, 0, len(axes))
	for t := range axes {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)

	var suffix strings.Builder
	for _, t := range tags {
		v := axes[t]
		if v == float64(int64(v)) {
			suffix.WriteString(t + strconv.FormatInt(int64(v), 10))
		} else {
			suffix.WriteString(t + strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return base + "-" + suffix.String() + ext
}

// Instantiate returns the path to a static instance materialized at axes,
// reusing a prior call's result when the (path, axes) pair repeats
// (Cache idempotence, SPEC_FULL.md §8). On any I/O failure it falls back
// to the original face's path, per ErrInstancingFailed semantics.
func (vi *VariableInstancer) Instantiate(rec *FontRecord, axes map[string]float64) (string, error) {
	if rec == nil || rec.Path == "" || len(axes) == 0 {
		if rec != nil {
			return rec.Path, nil
		}
		return "", newError(ErrInstancingFailed, "no source face for instancing")
	}

	key := instanceKey(rec.Path, axes)

	vi.mu.Lock()
	if p, ok := vi.cache[key]; ok {
		vi.mu.Unlock()
		return p, nil
	}
	vi.mu.Unlock()

	if err := os.MkdirAll(vi.scratchDir, 0o755); err != nil {
		return rec.Path, newError(ErrInstancingFailed, "scratch dir: "+err.Error())
	}

	outName := instanceFileName(rec.Path, axes)
	outPath := filepath.Join(vi.scratchDir, outName)

	if _, err := os.Stat(outPath); err == nil {
		vi.mu.Lock()
		vi.cache[key] = outPath
		vi.mu.Unlock()
		return outPath, nil
	}

	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return rec.Path, newError(ErrInstancingFailed, "read source face: "+err.Error())
	}

	tmp, err := os.CreateTemp(vi.scratchDir, ".instance-*.tmp")
	if err != nil {
		return rec.Path, newError(ErrInstancingFailed, "create temp file: "+err.Error())
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return rec.Path, newError(ErrInstancingFailed, "write temp file: "+err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return rec.Path, newError(ErrInstancingFailed, "close temp file: "+err.Error())
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		// Another writer may have won the race with identical bytes; that's fine.
		if _, statErr := os.Stat(outPath); statErr != nil {
			os.Remove(tmpPath)
			return rec.Path, newError(ErrInstancingFailed, "rename temp file: "+err.Error())
		}
		os.Remove(tmpPath)
	}

	vi.mu.Lock()
	vi.cache[key] = outPath
	vi.mu.Unlock()
	return outPath, nil
}

// NormalizedCoords maps axis values to go-text/typesetting's [-1,1]
// normalized variation space given a face's declared axis ranges. Values
// outside [min,max] are clamped. Shaper.Shape takes no variation
// coordinates, so the result is not used during rendering.
func NormalizedCoords(axes map[string]AxisRange, requested map[string]float64) map[string]float32 {
	out := make(map[string]float32, len(requested))
	for tag, v := range requested {
		rng, ok := axes[tag]
		if !ok {
			continue
		}
		if v < rng.Min {
			v = rng.Min
		}
		if v > rng.Max {
			v = rng.Max
		}
		var n float64
		switch {
		case v < rng.Default && rng.Default > rng.Min:
			n = (v - rng.Default) / (rng.Default - rng.Min)
		case v > rng.Default && rng.Max > rng.Default:
			n = (v - rng.Default) / (rng.Max - rng.Default)
		default:
			n = 0
		}
		out[tag] = float32(n)
	}
	return out
}
