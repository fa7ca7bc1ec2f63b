package app

import (
	"os"
	"path/filepath"

	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/zurustar/evrun/pkg/audio"
	"github.com/zurustar/evrun/pkg/fileutil"
)

// SoundFontLocation represents the location of a SoundFont file.
type SoundFontLocation struct {
	// Path is the path to the SoundFont file
	Path string
	// FileSystem is the FileSystem to use for loading (nil for paths on the OS file system)
	FileSystem fileutil.FileSystem
}

// DefaultSoundFontName is the default SoundFont filename to search for.
const DefaultSoundFontName = "GeneralUser-GS.sf2"

// findSoundFont searches for a SoundFont file in the following order:
// 1. The explicit path, as given or inside the project
// 2. Current directory
// 3. Project directory
// 4. The project's audio directory
//
// Project lookups ignore case. It returns nil if nothing is found.
func findSoundFont(project fileutil.FileSystem, explicit string) *SoundFontLocation {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return &SoundFontLocation{Path: explicit}
		}
		if project != nil && !filepath.IsAbs(explicit) {
			if p, err := project.Resolve(filepath.ToSlash(explicit)); err == nil {
				return &SoundFontLocation{Path: p, FileSystem: project}
			}
		}
		return nil
	}

	if _, err := os.Stat(DefaultSoundFontName); err == nil {
		return &SoundFontLocation{Path: DefaultSoundFontName}
	}

	if project == nil {
		return nil
	}
	for _, name := range []string{DefaultSoundFontName, "audio/" + DefaultSoundFontName} {
		if p, err := project.Resolve(name); err == nil {
			return &SoundFontLocation{Path: p, FileSystem: project}
		}
	}
	return nil
}

// loadSoundFont loads the configured SoundFont. MIDI playback is disabled
// when none is found or it cannot be parsed.
func (a *Application) loadSoundFont() *meltysynth.SoundFont {
	loc := findSoundFont(a.fsys, a.config.SoundFont)
	if loc == nil {
		if a.config.SoundFont != "" {
			a.log.Warn("SoundFont not found", "path", a.config.SoundFont)
		} else {
			a.log.Info("no SoundFont found, MIDI playback disabled")
		}
		return nil
	}

	sf, err := audio.LoadSoundFontFS(loc.FileSystem, loc.Path)
	if err != nil {
		a.log.Warn("failed to load SoundFont", "path", loc.Path, "error", err)
		return nil
	}
	a.log.Info("SoundFont loaded", "path", loc.Path)
	return sf
}
