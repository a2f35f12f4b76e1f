package config

import (
	"github.com/tatoeba/tatoprov/internal/model"
)

const (
	// DefaultVersion is the schema version written by Default.
	DefaultVersion = "1.0.0"

	defaultFrameworkVersion = "1.2.1"
	defaultArchiveURL       = "https://sourceforge.net/projects/cppcms/files/cppcms/1.2.1/cppcms-1.2.1.tar.bz2/download"
	defaultRepoURL          = "https://github.com/Tatoeba/tatodetect.git"
	defaultExportsURL       = "https://downloads.tatoeba.org/exports"
)

// Default returns the configuration used when no file is supplied. Parsed
// files are decoded on top of it, so any key a file omits keeps this value.
func Default() *Config {
	return &Config{
		Version: DefaultVersion,
		Name:    "tatodetect",
		Settings: Settings{
			Jobs:      2,
			Workspace: "/tmp",
			LockFile:  "/run/lock/tatoprov.lock",
		},
		Packages: Packages{
			Required: []string{
				"cmake",
				"g++",
				"make",
				"libpcre3-dev",
				"zlib1g-dev",
				"libgcrypt20-dev",
				"libicu-dev",
				"libsqlite3-dev",
				"python3",
			},
			Transient: []string{"python-is-python3"},
		},
		Framework: FrameworkSource{
			Version:            defaultFrameworkVersion,
			ArchiveURL:         defaultArchiveURL,
			PatchFile:          "CMakeLists.txt",
			PatchLine:          "enable_testing()",
			PatchCommentPrefix: "#",
		},
		Daemon: DaemonSource{
			RepoURL: defaultRepoURL,
			Depth:   1,
			Binary:  "tatodetect",
			Tool:    "tools/generate.py",
		},
		Service: Service{
			Unit:       "tatodetect.service",
			Binary:     "tatodetect",
			User:       "tatodetect",
			ListenAddr: "127.0.0.1",
			ListenPort: 8080,
		},
		Paths: Paths{
			Binary:   "/usr/local/bin/tatodetect",
			Tool:     "/usr/local/bin/tatodetect-generate.py",
			Unit:     "/etc/systemd/system/tatodetect.service",
			Config:   "/etc/tatodetect/config.js",
			Defaults: "/etc/default/tatodetect",
		},
		Data: Data{
			Mode:       model.AcquireDownload,
			DBFile:     "/var/lib/tatodetect/ngrams.db",
			ExportsURL: defaultExportsURL,
		},
		Verify: VerifySettings{CheckService: true},
	}
}
