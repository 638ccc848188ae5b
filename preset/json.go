package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-chime/dsp"
	"github.com/cwbudde/algo-chime/scene"
)

// File is the JSON schema for session presets. Absent fields keep defaults.
type File struct {
	Volume       *float32 `json:"volume"`
	Waveform     string   `json:"waveform"`
	SoundEnabled *bool    `json:"sound_enabled"`
	SpinEnabled  *bool    `json:"spin_enabled"`
	Seed         *int64   `json:"seed"`

	Synth *SynthSetting `json:"synth"`
	Room  *RoomSetting  `json:"room"`
}

// SynthSetting is a partial voice-chain override.
type SynthSetting struct {
	MixGain      *float32 `json:"mix_gain"`
	SustainBoost *float32 `json:"sustain_boost"`
	FilterCutoff *float32 `json:"filter_cutoff"`
	FilterQ      *float32 `json:"filter_q"`
	VibratoRate  *float32 `json:"vibrato_rate"`
	VibratoDepth *float32 `json:"vibrato_depth"`
}

// RoomSetting configures the mix-bus room convolver.
type RoomSetting struct {
	Enabled   *bool    `json:"enabled"`
	IRWavPath string   `json:"ir_wav_path"`
	Dry       *float32 `json:"dry"`
	Wet       *float32 `json:"wet"`
}

// LoadJSON loads a preset JSON file and applies it on top of the default
// session config. A relative room IR path is resolved against the preset's
// directory.
func LoadJSON(path string) (scene.Config, error) {
	cfg := scene.DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := ApplyFile(&cfg, &f); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	if p := cfg.Synth.RoomIRWavPath; p != "" && !filepath.IsAbs(p) {
		cfg.Synth.RoomIRWavPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}
	return cfg, nil
}

// ApplyFile applies a parsed preset file onto an existing config.
func ApplyFile(dst *scene.Config, f *File) error {
	if dst == nil || dst.Synth == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.Volume != nil {
		if *f.Volume < 0 || *f.Volume > 1 {
			return fmt.Errorf("volume must be in [0,1]")
		}
		dst.Volume = *f.Volume
		dst.Synth.Volume = *f.Volume
	}
	if w := strings.TrimSpace(f.Waveform); w != "" {
		wf, err := dsp.ParseWaveform(w)
		if err != nil {
			return err
		}
		dst.Waveform = wf
	}
	if f.SoundEnabled != nil {
		dst.SoundEnabled = *f.SoundEnabled
	}
	if f.SpinEnabled != nil {
		dst.SpinEnabled = *f.SpinEnabled
	}
	if f.Seed != nil {
		dst.Seed = *f.Seed
	}

	if s := f.Synth; s != nil {
		p := dst.Synth
		if s.MixGain != nil {
			if *s.MixGain <= 0 || *s.MixGain > 1 {
				return fmt.Errorf("synth.mix_gain must be in (0,1]")
			}
			p.MixGain = *s.MixGain
		}
		if s.SustainBoost != nil {
			if *s.SustainBoost <= 0 {
				return fmt.Errorf("synth.sustain_boost must be > 0")
			}
			p.SustainBoost = *s.SustainBoost
		}
		if s.FilterCutoff != nil {
			if *s.FilterCutoff <= 0 {
				return fmt.Errorf("synth.filter_cutoff must be > 0")
			}
			p.FilterCutoff = *s.FilterCutoff
		}
		if s.FilterQ != nil {
			if *s.FilterQ <= 0 {
				return fmt.Errorf("synth.filter_q must be > 0")
			}
			p.FilterQ = *s.FilterQ
		}
		if s.VibratoRate != nil {
			if *s.VibratoRate < 0 {
				return fmt.Errorf("synth.vibrato_rate must be >= 0")
			}
			p.VibratoRate = *s.VibratoRate
		}
		if s.VibratoDepth != nil {
			if *s.VibratoDepth < 0 {
				return fmt.Errorf("synth.vibrato_depth must be >= 0")
			}
			p.VibratoDepth = *s.VibratoDepth
		}
	}

	if r := f.Room; r != nil {
		p := dst.Synth
		if r.Enabled != nil {
			p.RoomEnabled = *r.Enabled
		}
		if r.IRWavPath != "" {
			p.RoomIRWavPath = strings.TrimSpace(r.IRWavPath)
		}
		if r.Dry != nil {
			if *r.Dry < 0 {
				return fmt.Errorf("room.dry must be >= 0")
			}
			p.RoomDryMix = *r.Dry
		}
		if r.Wet != nil {
			if *r.Wet < 0 {
				return fmt.Errorf("room.wet must be >= 0")
			}
			p.RoomWetMix = *r.Wet
		}
	}
	return nil
}
