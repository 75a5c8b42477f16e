package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/intent"
	"github.com/theapemachine/taskagent/pkg/provider"
	"github.com/theapemachine/taskagent/pkg/stores"
	"github.com/theapemachine/taskagent/pkg/stores/memory"
	"github.com/theapemachine/taskagent/pkg/stores/s3"
	"github.com/theapemachine/taskagent/pkg/stores/sqlite"
	"github.com/theapemachine/taskagent/pkg/tasks"
)

/*
runtime holds everything the serve and mcp commands share: the assistant,
the ownership-checked executor and the background loops that must run for
as long as the process does.
*/
type runtime struct {
	assistant  *chat.Assistant
	executor   *tasks.Executor
	location   *time.Location
	background []func(ctx context.Context) error
	closers    []func() error
}

func (rt *runtime) Close() {
	for _, closer := range rt.closers {
		if err := closer(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}
}

func buildRuntime(ctx context.Context, options ...chat.AssistantOption) (*runtime, error) {
	rt := &runtime{location: tasks.LoadZone(viper.GetString("chat.timezone"))}

	repo, err := buildRepository(ctx, rt)

	if err != nil {
		return nil, err
	}

	rt.executor = tasks.NewExecutor(repo)

	sessions, err := buildSessions(ctx, rt)

	if err != nil {
		rt.Close()
		return nil, err
	}

	portTimeout := viper.GetDuration("chat.port_timeout")

	base := []chat.AssistantOption{
		chat.WithSessionStore(sessions),
		chat.WithActionExecutor(rt.executor),
		chat.WithLocation(rt.location),
		chat.WithHistoryLimit(viper.GetInt("chat.history_size")),
		chat.WithPortTimeout(portTimeout),
	}

	completer := buildCompleter()

	if completer != nil {
		base = append(base,
			chat.WithCascade(intent.NewCascade(
				intent.WithClassifier(provider.NewClassifier(completer)),
				intent.WithClassifierTimeout(portTimeout),
			)),
			chat.WithExtractor(provider.NewExtractor(completer)),
			chat.WithAnswerer(provider.NewAnswerer(completer)),
		)
	}

	rt.assistant = chat.NewAssistant(append(base, options...)...)

	return rt, nil
}

func buildRepository(ctx context.Context, rt *runtime) (tasks.Repository, error) {
	switch kind := viper.GetString("stores.tasks"); kind {
	case "", "memory":
		return memory.NewTaskRepository(), nil
	case "sqlite":
		path := expandHome(viper.GetString("stores.sqlite.path"))

		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}

		repo, err := sqlite.Open(ctx, path)

		if err != nil {
			return nil, err
		}

		rt.closers = append(rt.closers, repo.Close)
		log.Info("task repository ready", "store", kind, "path", path)

		return repo, nil
	default:
		return nil, fmt.Errorf("unknown task store %q", kind)
	}
}

func buildSessions(ctx context.Context, rt *runtime) (chat.SessionStore, error) {
	switch kind := viper.GetString("stores.sessions"); kind {
	case "", "memory":
		store := stores.NewSessionStore(stores.WithTTL[*chat.State](viper.GetDuration("chat.session_ttl")))
		rt.background = append(rt.background, store.Run)

		return store, nil
	case "s3":
		conn, err := s3.NewConn(s3.Config{
			Endpoint:  viper.GetString("stores.s3.endpoint"),
			AccessKey: viper.GetString("stores.s3.access_key"),
			SecretKey: viper.GetString("stores.s3.secret_key"),
			Bucket:    viper.GetString("stores.s3.bucket"),
			UseSSL:    viper.GetBool("stores.s3.use_ssl"),
		})

		if err != nil {
			return nil, fmt.Errorf("connect s3: %w", err)
		}

		if err = conn.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}

		return s3.NewSessionStore(conn), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}

/*
buildCompleter returns nil when no provider is configured; the assistant then
runs on the quick matcher and keyword fallback alone.  Fallbacks are written
as name:model and are tried after the primary.
*/
func buildCompleter() provider.Completer {
	chain := provider.NewChain()
	entries := append([]string{viper.GetString("provider.name") + ":" + viper.GetString("provider.model")},
		viper.GetStringSlice("provider.fallbacks")...)

	for _, entry := range entries {
		name, model, _ := strings.Cut(entry, ":")

		if name == "" || name == "none" {
			continue
		}

		completer, err := provider.New(name, model)

		if err != nil {
			log.Warn("provider unavailable", "provider", name, "error", err)
			continue
		}

		chain.Add(name, completer)
	}

	if chain.Len() == 0 {
		log.Info("no language model configured; using rule based intents only")
		return nil
	}

	return chain
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, rest)
	}

	return path
}
