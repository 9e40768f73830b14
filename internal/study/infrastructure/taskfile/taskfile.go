// Package taskfile reads and writes study tasks as YAML.
//
//	tasks:
//	  - subject: Physics
//	    name: Chapter 4
//	    hours: 5
//	    due: 2026-03-09
//	    importance: high
//	    hard_deadline: true
package taskfile

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// File is the document root.
type File struct {
	Tasks []Entry `yaml:"tasks"`
}

// Entry is one task in a task file.
type Entry struct {
	Subject      string  `yaml:"subject"`
	Name         string  `yaml:"name,omitempty"`
	Hours        float64 `yaml:"hours"`
	Remaining    float64 `yaml:"remaining,omitempty"`
	Due          string  `yaml:"due"`
	Importance   string  `yaml:"importance,omitempty"`
	HardDeadline bool    `yaml:"hard_deadline,omitempty"`
}

// Load reads a task file from disk.
func Load(path string) ([]Entry, error) {
	f, err := security.SafeOpen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read decodes a task file. An empty document yields no entries.
func Read(r io.Reader) ([]Entry, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode task file: %w", err)
	}
	return doc.Tasks, nil
}

// Write encodes entries as a task file.
func Write(w io.Writer, entries []Entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Tasks: entries}); err != nil {
		return fmt.Errorf("encode task file: %w", err)
	}
	return enc.Close()
}

// Commands converts entries to add commands. Entries with an unreadable due
// date keep a zero date so intake rejects them individually.
func Commands(entries []Entry, actor string) []commands.AddTaskCommand {
	cmds := make([]commands.AddTaskCommand, 0, len(entries))
	for _, e := range entries {
		due, _ := time.Parse(dateLayout, e.Due)
		cmds = append(cmds, commands.AddTaskCommand{
			Subject:      e.Subject,
			Name:         e.Name,
			Hours:        e.Hours,
			DueDate:      due,
			Importance:   e.Importance,
			HardDeadline: e.HardDeadline,
			Actor:        actor,
		})
	}
	return cmds
}

// FromDTOs builds entries for export.
func FromDTOs(tasks []queries.TaskDTO) []Entry {
	entries := make([]Entry, 0, len(tasks))
	for _, t := range tasks {
		e := Entry{
			Subject:      t.Subject,
			Hours:        t.TotalHours,
			Due:          t.DueDate.Format(dateLayout),
			Importance:   t.ImportanceLabel,
			HardDeadline: t.HardDeadline,
		}
		if t.Name != t.Subject {
			e.Name = t.Name
		}
		if t.RemainingHours != t.TotalHours {
			e.Remaining = t.RemainingHours
		}
		if _, err := strconv.ParseFloat(e.Importance, 64); err == nil {
			e.Importance = strconv.FormatFloat(t.Importance, 'g', -1, 64)
		}
		entries = append(entries, e)
	}
	return entries
}
