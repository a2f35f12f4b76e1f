package commandplugin

import "github.com/tatoeba/tatoprov/internal/ports"

func portsRequest(workDir, dbFile, user string) ports.GenerateRequest {
	return ports.GenerateRequest{
		Tool:       "/usr/local/bin/tatodetect-generate.py",
		ExportsURL: "https://downloads.tatoeba.org/exports",
		WorkDir:    workDir,
		DBFile:     dbFile,
		User:       user,
	}
}
