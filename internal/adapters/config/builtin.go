package config

import (
	"sync"

	"go.trai.ch/stage/internal/core/domain"
)

func sha256Sum(hex string) map[string]string {
	return map[string]string{"sha256": hex}
}

var builtinLibraries = []domain.Library{
	{ID: "ALSA"},
	{ID: "FREETYPE", DependsOn: []string{"ZLIB"}, SystemOn: []string{"dingux"}},
	{ID: "GL", SystemOn: []string{domain.AllPlatforms}},
	{ID: "GLEW", DependsOn: []string{"GL"}},
	{ID: "OGG"},
	{ID: "PKG_CONFIG"},
	{ID: "PNG", DependsOn: []string{"ZLIB"}, SystemOn: []string{"dingux"}},
	{ID: "SDL2", SystemOn: []string{"dingux"}},
	{ID: "SDL2_TTF", DependsOn: []string{"SDL2", "FREETYPE", "ZLIB"}},
	{ID: "TCL"},
	{ID: "THEORA", DependsOn: []string{"OGG", "VORBIS"}},
	{ID: "VORBIS", DependsOn: []string{"OGG"}},
	{ID: "ZLIB", SystemOn: []string{"darwin", "dingux"}},
}

var builtinPackages = []domain.Package{
	{
		ID:              "ALSA",
		NiceName:        "ALSA",
		SourceName:      "alsa-lib",
		Version:         "1.1.7",
		DownloadURL:     "https://www.alsa-project.org/files/pub/lib/",
		FileLength:      1005257,
		Checksums:       sha256Sum("9d6000b882a3b2df56300521225d69717be6741b71269e488bb20a20783bdc09"),
		TarballOverride: "alsa-lib-1.1.7.tar.bz2",
	},
	{
		ID:          "FREETYPE",
		NiceName:    "FreeType",
		SourceName:  "freetype",
		Version:     "2.4.12",
		DownloadURL: "http://downloads.sourceforge.net/freetype",
		FileLength:  2117909,
		Checksums:   sha256Sum("9755806ff72cba095aad47dce6f0ad66bd60fee2a90323707d2cac5c526066f0"),
	},
	{
		ID:         "GL",
		NiceName:   "OpenGL",
		SourceName: "gl",
	},
	{
		ID:              "GLEW",
		NiceName:        "GLEW",
		SourceName:      "glew",
		Version:         "1.9.0",
		DownloadURL:     "http://downloads.sourceforge.net/glew",
		FileLength:      544440,
		Checksums:       sha256Sum("9b36530e414c95d6624be9d6815a5be1531d1986300ae5903f16977ab8aeb787"),
		TarballOverride: "glew-1.9.0.tgz",
	},
	{
		ID:          "OGG",
		NiceName:    "libogg",
		SourceName:  "libogg",
		Version:     "1.3.3",
		DownloadURL: "http://downloads.xiph.org/releases/ogg",
		FileLength:  579853,
		Checksums:   sha256Sum("c2e8a485110b97550f453226ec644ebac6cb29d1caef2902c007edab4308d985"),
	},
	{
		ID:          "PKG_CONFIG",
		NiceName:    "pkg-config",
		SourceName:  "pkg-config",
		Version:     "0.29.2",
		DownloadURL: "https://pkg-config.freedesktop.org/releases",
		FileLength:  2016830,
		Checksums:   sha256Sum("6fc69c01688c9458a57eb9a1664c9aba372ccda420a02bf4429fe610e7e7d591"),
	},
	{
		ID:          "PNG",
		NiceName:    "libpng",
		SourceName:  "libpng",
		Version:     "1.6.20",
		DownloadURL: "http://downloads.sourceforge.net/libpng",
		FileLength:  1417478,
		Checksums:   sha256Sum("3d3bdc16f973a62fb1d26464fe2fe19f51dde9b883feff3e059d18ec1457b199"),
	},
	{
		ID:          "SDL2",
		NiceName:    "SDL2",
		SourceName:  "SDL2",
		Version:     "2.0.9",
		DownloadURL: "http://www.libsdl.org/release",
		FileLength:  5246942,
		Checksums:   sha256Sum("255186dc676ecd0c1dbf10ec8a2cc5d6869b5079d8a38194c2aecdff54b324b1"),
	},
	{
		ID:          "SDL2_TTF",
		NiceName:    "SDL2_ttf",
		SourceName:  "SDL2_ttf",
		Version:     "2.0.14",
		DownloadURL: "http://www.libsdl.org/projects/SDL_ttf/release",
		FileLength:  4147462,
		Checksums:   sha256Sum("34db5e20bcf64e7071fe9ae25acaa7d72bdc4f11ab3ce59acc768ab62fe39276"),
	},
	{
		ID:                "TCL",
		NiceName:          "Tcl",
		SourceName:        "tcl",
		Version:           "8.5.18",
		DownloadURL:       "http://downloads.sourceforge.net/tcl",
		FileLength:        4534628,
		Checksums:         sha256Sum("032be57a607bdf252135b52fac9e3a7016e526242374ac7637b083ecc4c5d3c9"),
		SourceDirOverride: "tcl8.5.18",
		TarballOverride:   "tcl8.5.18-src.tar.gz",
	},
	{
		ID:          "THEORA",
		NiceName:    "libtheora",
		SourceName:  "libtheora",
		Version:     "1.1.1",
		DownloadURL: "http://downloads.xiph.org/releases/theora",
		FileLength:  2111877,
		Checksums:   sha256Sum("40952956c47811928d1e7922cda3bc1f427eb75680c3c37249c91e949054916b"),
	},
	{
		ID:          "VORBIS",
		NiceName:    "libvorbis",
		SourceName:  "libvorbis",
		Version:     "1.3.6",
		DownloadURL: "http://downloads.xiph.org/releases/vorbis",
		FileLength:  1634357,
		Checksums:   sha256Sum("6ed40e0241089a42c48604dc00e362beee00036af2d8b3f46338031c9e0351cb"),
	},
	{
		ID:          "ZLIB",
		NiceName:    "zlib",
		SourceName:  "zlib",
		Version:     "1.2.8",
		DownloadURL: "http://downloads.sourceforge.net/libpng",
		FileLength:  571091,
		Checksums:   sha256Sum("36658cb768a54c1d4dec43c3116c27ed893e88b02ecfcb44f2166f9c0b7f2a0d"),
	},
}

var builtinComponents = []domain.Component{
	{ID: "CORE", Libraries: []string{"SDL2", "SDL2_TTF", "PNG", "TCL", "ZLIB"}},
	{ID: "GL", Libraries: []string{"GL", "GLEW"}},
	{ID: "LASERDISC", Libraries: []string{"OGG", "VORBIS", "THEORA"}},
	{ID: "ALSAMIDI", Libraries: []string{"ALSA"}},
}

var builtinConfigurations = map[string][]string{
	domain.DefaultConfiguration: {"CORE", "GL", "LASERDISC", "ALSAMIDI"},
}

// Builtin returns the registry compiled into the binary.
var Builtin = sync.OnceValues(func() (*domain.Registry, error) {
	return domain.NewRegistry(builtinLibraries, builtinPackages, builtinComponents, builtinConfigurations)
})
