package transcript

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/panelist/internal/errors"
	"github.com/hpungsan/panelist/internal/interview"
)

// DefaultDir is where transcripts go when no directory is configured.
const DefaultDir = "interview_results"

// fileTimeLayout is YYYYMMDD_HHMMSS.
const fileTimeLayout = "20060102_150405"

// Record is the on-disk transcript.
type Record struct {
	PersonaType         string               `json:"persona_type"`
	ResearchTopic       string               `json:"research_topic"`
	ConversationHistory []interview.Exchange `json:"conversation_history"`
	Results             map[string]string    `json:"results"`
	FailedQuestions     []interview.Failure  `json:"failed_questions,omitempty"`
}

// NewRecord snapshots a session.
func NewRecord(s *interview.Session) *Record {
	history := s.History()
	if history == nil {
		history = []interview.Exchange{}
	}
	return &Record{
		PersonaType:         s.PersonaID(),
		ResearchTopic:       s.Topic(),
		ConversationHistory: history,
		Results:             s.Results(),
		FailedQuestions:     s.Failures(),
	}
}

// Store writes transcripts into Dir.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir, or DefaultDir when dir is empty.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{Dir: dir}
}

// FileName returns the transcript file name for a persona and creation time.
// The time is formatted in the local zone at second resolution.
func FileName(personaID string, t time.Time) string {
	return fmt.Sprintf("interview_%s_%s.json", personaID, t.Local().Format(fileTimeLayout))
}

// PathFor returns where s would be saved.
func (st *Store) PathFor(s *interview.Session) string {
	return filepath.Join(st.Dir, FileName(s.PersonaID(), s.CreatedAt()))
}

// Save finalizes s and writes its transcript. The file is written to a temp
// path in the same directory and renamed into place, so readers never see a
// partial document. Saving the same session again rewrites identical bytes.
func (st *Store) Save(s *interview.Session) (string, error) {
	s.Finalize()

	data, err := json.MarshalIndent(NewRecord(s), "", "  ")
	if err != nil {
		return "", errors.NewInternal(err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(st.Dir, 0o755); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to create transcript directory: %w", err))
	}

	path := st.PathFor(s)
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes data via temp file, sync and rename.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create transcript file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(file, bytes.NewReader(data)); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		file = nil
		return errors.NewInternal(err)
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to finalize transcript file: %w", err))
	}
	success = true
	return nil
}

// Load reads a transcript. A missing file is NOT_FOUND; unreadable or
// malformed JSON is INTERNAL.
func Load(path string) (*Record, error) {
	f, err := openNoFollowRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rec Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("invalid transcript %s: %w", path, err))
	}
	return &rec, nil
}
