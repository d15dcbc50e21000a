package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

var shellCommands = []string{
	"help", "list", "more", "date", "dates", "search", "add", "compose",
	"draft", "discard", "edit", "delete", "undo", "dismiss", "backup", "quit",
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session with drafts, load more and undo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *Application) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			if app.backupMgr != nil {
				go app.backupMgr.StartAutomatedBackups(ctx, app.config.BackupInterval)
			}
			go app.rateLimiter.StartCleanupWorker(ctx, time.Hour, app.logger)

			s := &Shell{app: app}
			return s.Run(ctx)
		})
	},
}

// Shell is the interactive command loop.
type Shell struct {
	app   *Application
	liner *liner.State

	mu      sync.Mutex
	notices []string
	handled map[int64]bool // undo slots the user restored or dismissed
}

// historyFile returns the path to the history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".daynotes_history")
}

// Run starts the loop and returns when the user quits or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	s.liner = liner.NewLiner()
	defer s.liner.Close()

	s.liner.SetCtrlCAborts(true)
	s.liner.SetCompleter(s.completer)

	if f, err := os.Open(historyFile()); err == nil {
		s.liner.ReadHistory(f)
		f.Close()
	}
	defer s.saveHistory()

	stopWatch := s.watchUndo()
	defer stopWatch()

	if err := s.app.service.LoadNotes(ctx, 0, nil); err != nil {
		return err
	}
	printState(os.Stdout, s.app.service.Snapshot())
	if draft := s.app.service.Draft(ctx); draft != "" {
		fmt.Println(noticeStyle.Render("You have an unsent draft, type 'compose' to finish it."))
	}
	fmt.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		s.printNotices()

		line, err := s.liner.Prompt("daynotes> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.liner.AppendHistory(line)

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if quit := s.dispatch(ctx, strings.ToLower(cmd), rest); quit {
			return nil
		}
	}
	return nil
}

func (s *Shell) dispatch(ctx context.Context, cmd, rest string) bool {
	svc := s.app.service
	var err error

	switch cmd {
	case "quit", "exit", "q":
		return true

	case "help", "?":
		s.printHelp()
		return false

	case "list", "ls":
		err = svc.LoadNotes(ctx, 0, nil)

	case "more":
		err = svc.LoadMore(ctx)

	case "date":
		var date *time.Time
		if date, err = parseDate(rest); err == nil {
			err = svc.LoadNotes(ctx, 0, date)
		}

	case "dates":
		var dates []time.Time
		if dates, err = svc.DatesWithNotes(ctx); err == nil {
			for _, d := range dates {
				fmt.Println(d.Format(time.DateOnly))
			}
			return false
		}

	case "search", "/":
		err = svc.SearchNotes(ctx, rest)

	case "add":
		_, err = svc.CreateNote(ctx, rest)

	case "draft":
		svc.SaveDraft(rest)
		fmt.Println(noticeStyle.Render("draft saved"))
		return false

	case "compose":
		err = s.compose(ctx)

	case "discard":
		svc.DiscardDraft(ctx)
		fmt.Println(noticeStyle.Render("draft discarded"))
		return false

	case "edit":
		idStr, text, _ := strings.Cut(rest, " ")
		var id int64
		if id, err = parseID(idStr); err == nil {
			svc.EditNote(id, text)
			fmt.Println(noticeStyle.Render("saving..."))
			return false
		}

	case "delete", "del", "rm":
		var id int64
		if id, err = parseID(rest); err == nil {
			err = svc.DeleteNote(ctx, id)
		}

	case "undo":
		s.acknowledgeUndo()
		_, err = svc.UndoDelete(ctx)

	case "dismiss":
		s.acknowledgeUndo()
		svc.ClearUndo()

	case "backup":
		var path string
		if path, err = createBackup(ctx, s.app); err == nil {
			fmt.Printf("Backup written to %s\n", path)
			return false
		}

	default:
		fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		return false
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	printState(os.Stdout, svc.Snapshot())
	return false
}

// compose edits the saved draft in place and posts it.
func (s *Shell) compose(ctx context.Context) error {
	svc := s.app.service
	svc.Flush()

	text, err := s.liner.PromptWithSuggestion("note> ", svc.Draft(ctx), -1)
	if err == liner.ErrPromptAborted {
		fmt.Println(noticeStyle.Render("compose cancelled, draft kept"))
		return nil
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(text) == "" {
		svc.DiscardDraft(ctx)
		return nil
	}

	_, err = svc.SubmitDraft(ctx, text)
	return err
}

// watchUndo queues a notice when the undo window of a delete closes on its
// own.
func (s *Shell) watchUndo() func() {
	updates, unsubscribe := s.app.service.Subscribe(16)

	go func() {
		var pending int64
		for st := range updates {
			switch {
			case st.ShowUndo && st.Undo != nil:
				pending = st.Undo.ID
			case pending != 0:
				s.mu.Lock()
				if s.handled[pending] {
					delete(s.handled, pending)
				} else {
					s.notices = append(s.notices, fmt.Sprintf("note #%d is gone for good", pending))
				}
				s.mu.Unlock()
				pending = 0
			}
		}
	}()

	return unsubscribe
}

// acknowledgeUndo marks the current undo slot as closed by the user so its
// disappearance is not reported as an expiry.
func (s *Shell) acknowledgeUndo() {
	st := s.app.service.Snapshot()
	if st.Undo == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handled == nil {
		s.handled = make(map[int64]bool)
	}
	s.handled[st.Undo.ID] = true
}

func (s *Shell) printNotices() {
	s.mu.Lock()
	notices := s.notices
	s.notices = nil
	s.mu.Unlock()

	for _, n := range notices {
		fmt.Println(noticeStyle.Render(n))
	}
}

func (s *Shell) printHelp() {
	fmt.Println(`Commands:
  list                 first page of notes, newest first
  more                 load the next page
  date [YYYY-MM-DD]    notes from one day, or all notes without a date
  dates                days that have notes
  search <query>       fuzzy search (alias /)
  add <text>           add a note
  draft <text>         save text as the draft
  compose              edit the draft and post it
  discard              throw the draft away
  edit <id> <text>     replace a note's content (saved after a short pause)
  delete <id>          delete a note
  undo                 restore the last deleted note
  dismiss              forget the last deleted note
  backup               write an encrypted backup
  quit                 leave`)
}

// saveHistory persists command history to disk.
func (s *Shell) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			s.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// completer provides tab completion for commands.
func (s *Shell) completer(line string) []string {
	var out []string
	lower := strings.ToLower(line)
	for _, c := range shellCommands {
		if strings.HasPrefix(c, lower) {
			out = append(out, c)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
