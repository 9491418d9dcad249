package root

import (
	"fmt"
	"os"
	"path/filepath"

	"petprogress/internal/engine"
	"petprogress/internal/notify"
	"petprogress/internal/state"
)

// Storage location and backend resolve from the environment:
//
//	PP_STATE          — db file (sqlite) or directory (file backend);
//	                    default ~/.petprogress.db
//	PP_STATE_BACKEND  — "sqlite" (default) or "file"
//	PP_STAGES         — optional stage config JSON
//	PP_REFRESH_FILE   — optional touch-file a display surface watches

func defaultStatePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".petprogress.db"), nil
}

func openBlob() (state.BlobStore, error) {
	path := os.Getenv("PP_STATE")
	if path == "" {
		var err error
		path, err = defaultStatePath()
		if err != nil {
			return nil, err
		}
	}

	switch backend := os.Getenv("PP_STATE_BACKEND"); backend {
	case "", "sqlite":
		return state.OpenSQLiteBlob(path)
	case "file":
		return state.NewFileBlob(path)
	default:
		return nil, fmt.Errorf("unknown PP_STATE_BACKEND %q (want sqlite or file)", backend)
	}
}

func openService() (*engine.Service, func(), error) {
	blob, err := openBlob()
	if err != nil {
		return nil, nil, err
	}
	store := state.NewStore(blob)
	svc := engine.NewService(store)

	if path := os.Getenv("PP_STAGES"); path != "" {
		stages, err := engine.LoadStages(path)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		svc.SetStages(stages)
	}
	if path := os.Getenv("PP_REFRESH_FILE"); path != "" {
		svc.SetNotifier(notify.NewTouchFile(path))
	}

	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup, nil
}
