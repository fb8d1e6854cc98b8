package transcoder

import (
	"fmt"
	"os"
	"strings"

	"media-converter/internal/logging"
	"media-converter/internal/mediatypes"

	"gopkg.in/yaml.v3"
)

// Presets holds the ffmpeg codec arguments used for each output extension.
// Extensions are lowercase without the leading dot.
type Presets struct {
	Video        map[string][]string `yaml:"video"`
	Audio        map[string][]string `yaml:"audio"`
	VideoDefault []string            `yaml:"video_default"`
	AudioDefault []string            `yaml:"audio_default"`
}

// DefaultPresets returns the built-in preset table.
func DefaultPresets() Presets {
	return Presets{
		Video: map[string][]string{
			"mp4":  {"-c:v", "libx264", "-c:a", "aac", "-strict", "experimental"},
			"webm": {"-c:v", "libvpx-vp9", "-c:a", "libopus"},
			"avi":  {"-c:v", "mpeg4", "-c:a", "mp3"},
			"mkv":  {"-c:v", "libx264", "-c:a", "aac"},
			"mov":  {"-c:v", "libx264", "-c:a", "aac"},
			"gif":  {"-vf", "fps=10,scale=480:-1:flags=lanczos", "-c:v", "gif"},
		},
		Audio: map[string][]string{
			"mp3":  {"-c:a", "libmp3lame", "-b:a", "192k"},
			"wav":  {"-c:a", "pcm_s16le"},
			"ogg":  {"-c:a", "libvorbis", "-q:a", "5"},
			"flac": {"-c:a", "flac"},
			"m4a":  {"-c:a", "aac", "-b:a", "192k"},
			"aac":  {"-c:a", "aac", "-b:a", "192k"},
		},
		VideoDefault: []string{"-c:v", "libx264", "-c:a", "aac"},
		AudioDefault: []string{"-c:a", "libmp3lame"},
	}
}

// LoadPresets reads a YAML preset file and merges it over the defaults.
// Entries in the file replace the built-in entry for the same extension;
// extensions the file does not mention keep their default arguments.
//
//	video:
//	  mp4: ["-c:v", "libx265", "-crf", "28", "-c:a", "aac"]
//	audio_default: ["-c:a", "libopus"]
func LoadPresets(path string) (Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return presets, fmt.Errorf("failed to read presets file: %w", err)
	}

	var override Presets
	if err := yaml.Unmarshal(data, &override); err != nil {
		return presets, fmt.Errorf("failed to parse presets file %s: %w", path, err)
	}

	for ext, args := range override.Video {
		presets.Video[mediatypes.NormalizeFormat(ext)] = args
	}
	for ext, args := range override.Audio {
		presets.Audio[mediatypes.NormalizeFormat(ext)] = args
	}
	if len(override.VideoDefault) > 0 {
		presets.VideoDefault = override.VideoDefault
	}
	if len(override.AudioDefault) > 0 {
		presets.AudioDefault = override.AudioDefault
	}

	logging.Debug("Loaded ffmpeg presets from %s (%d video, %d audio overrides)",
		path, len(override.Video), len(override.Audio))
	return presets, nil
}

// For returns the codec arguments for converting a file of kind into format.
// Unknown formats get the kind's generic default.
func (p Presets) For(kind mediatypes.Kind, format string) []string {
	format = strings.ToLower(format)
	switch kind {
	case mediatypes.KindVideo:
		if args, ok := p.Video[format]; ok {
			return args
		}
		return p.VideoDefault
	case mediatypes.KindAudio:
		if args, ok := p.Audio[format]; ok {
			return args
		}
		return p.AudioDefault
	}
	return nil
}
