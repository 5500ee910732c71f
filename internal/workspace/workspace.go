package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"scribe/internal/logging"
)

// sessionPrefix marks directories owned by this tool inside the temp root.
const sessionPrefix = "scribe_"

// Session is a per-run scratch directory beneath the configured temp root.
type Session struct {
	id   string
	root string

	logger *slog.Logger

	mu      sync.Mutex
	cleaned bool
}

// NewSession creates a fresh session directory under tempRoot. The directory
// name embeds a short random id so concurrent runs stay isolated.
func NewSession(tempRoot string, logger *slog.Logger) (*Session, error) {
	tempRoot = strings.TrimSpace(tempRoot)
	if tempRoot == "" {
		tempRoot = filepath.Join(os.TempDir(), "scribe")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	id := uuid.NewString()[:8]
	root := filepath.Join(tempRoot, sessionPrefix+id)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	logger.Debug("session directory created", logging.String("path", root))
	return &Session{id: id, root: root, logger: logger}, nil
}

// ID returns the short session identifier.
func (s *Session) ID() string {
	return s.id
}

// Root returns the session directory path.
func (s *Session) Root() string {
	return s.root
}

// Path joins the given elements beneath the session root.
func (s *Session) Path(elem ...string) string {
	return filepath.Join(append([]string{s.root}, elem...)...)
}

// Cleanup removes the session directory and everything beneath it. It is
// safe to call more than once. Removal failures are logged and swallowed so
// cleanup never masks the run's own outcome.
func (s *Session) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleaned {
		return
	}
	s.cleaned = true
	if err := os.RemoveAll(s.root); err != nil {
		s.logger.Warn("failed to remove session directory",
			logging.String("path", s.root),
			logging.Error(err),
			logging.String(logging.FieldEventType, "session_cleanup_failed"),
		)
		return
	}
	s.logger.Debug("session directory removed", logging.String("path", s.root))
}
