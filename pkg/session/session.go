// Package session holds the view-model of a document chat: the selected file,
// the in-flight latch and the chat log, plus the operations that drive them.
package session

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/schardosin/docqa/pkg/client"
)

const (
	Greeting       = "👋 Hello! I'm ready to answer questions about your document. Ask me anything!"
	ThinkingText   = "Thinking..."
	LoadingText    = "Processing your document..."
	ResetQuestion  = "Are you sure you want to upload a new document? Current chat will be cleared."
	uploadedFormat = "Document processed successfully! You can now ask questions about \"%s\"."
	busyAlert      = "Please wait for the current operation to finish."
)

// API is the subset of the backend the controller needs
type API interface {
	Upload(ctx context.Context, path string) (*client.UploadResult, error)
	Chat(ctx context.Context, message string) (*client.ChatResult, error)
	Reset(ctx context.Context) error
	Status(ctx context.Context) (*client.Status, error)
}

// Prompter surfaces blocking interactions to the user
type Prompter interface {
	Alert(message string)
	Confirm(question string) bool
}

type Mode int

const (
	ModeUpload Mode = iota
	ModeChat
)

func (m Mode) String() string {
	if m == ModeChat {
		return "chat"
	}
	return "upload"
}

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

type Message struct {
	ID      string
	Role    Role
	Text    string
	Pending bool // the "Thinking..." placeholder
}

// Document is a file chosen by the user but not necessarily uploaded
type Document struct {
	Path string
	Name string
}

// State is everything a view needs to render the session
type State struct {
	Mode          Mode
	SelectedFile  *Document
	FileLabel     string
	UploadEnabled bool
	DocLabel      string
	Loading       string
	Processing    bool
	SendEnabled   bool
	Messages      []Message
}

// Exchange is a chat send that has been accepted and rendered but not yet answered
type Exchange struct {
	Question      string
	placeholderID string
}

type Controller struct {
	api      API
	prompter Prompter
	onChange func()

	mu    sync.Mutex
	state State
	busy  bool // upload or reset outstanding
}

type Option func(*Controller)

// WithObserver registers fn to run after every state change. fn is called
// without the controller lock held and must not block.
func WithObserver(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

func New(api API, prompter Prompter, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		prompter: prompter,
		state:    initialState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func initialState() State {
	return State{
		Mode:        ModeUpload,
		SendEnabled: true,
		Messages:    []Message{newMessage(RoleBot, Greeting)},
	}
}

func newMessage(role Role, text string) Message {
	return Message{ID: uuid.NewString(), Role: role, Text: text}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Messages = append([]Message(nil), c.state.Messages...)
	if c.state.SelectedFile != nil {
		doc := *c.state.SelectedFile
		s.SelectedFile = &doc
	}
	return s
}

func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// SelectDocument records the user's file choice and enables upload. It never
// touches the network and does not validate the file.
func (c *Controller) SelectDocument(path string) {
	if path == "" {
		return
	}
	c.update(func(s *State) {
		s.SelectedFile = &Document{Path: path, Name: filepath.Base(path)}
		s.FileLabel = "Selected: " + filepath.Base(path)
		s.UploadEnabled = true
	})
}

// UploadDocument sends the selected file. Without a selection, or while another
// upload or reset is outstanding, it does nothing and returns nil.
func (c *Controller) UploadDocument(ctx context.Context) error {
	c.mu.Lock()
	if c.state.SelectedFile == nil || c.busy {
		c.mu.Unlock()
		return nil
	}
	c.busy = true
	path := c.state.SelectedFile.Path
	c.state.Loading = LoadingText
	c.mu.Unlock()
	c.changed()

	defer func() {
		c.update(func(s *State) {
			s.Loading = ""
		})
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	result, err := c.api.Upload(ctx, path)
	if err != nil {
		if client.IsAPIError(err) {
			c.prompter.Alert("Error: " + err.Error())
		} else {
			c.prompter.Alert("Error uploading file: " + err.Error())
		}
		return err
	}

	c.update(func(s *State) {
		s.DocLabel = DocumentLabel(result.Filename, result.Chunks)
		s.Mode = ModeChat
		s.Messages = append(s.Messages, newMessage(RoleBot, fmt.Sprintf(uploadedFormat, result.Filename)))
	})
	return nil
}

// StartSend accepts a chat message: it renders the user's text and the thinking
// placeholder and takes the in-flight latch. It returns false, changing nothing,
// for blank input or while another send is outstanding.
func (c *Controller) StartSend(text string) (*Exchange, bool) {
	question := strings.TrimSpace(text)

	c.mu.Lock()
	if question == "" || c.state.Processing {
		c.mu.Unlock()
		return nil, false
	}
	placeholder := newMessage(RoleBot, ThinkingText)
	placeholder.Pending = true
	c.state.Messages = append(c.state.Messages, newMessage(RoleUser, question), placeholder)
	c.state.Processing = true
	c.state.SendEnabled = false
	c.mu.Unlock()
	c.changed()

	return &Exchange{Question: question, placeholderID: placeholder.ID}, true
}

// FinishSend issues the chat request for ex and replaces its placeholder with
// the answer or an error. Send is re-enabled whatever the outcome.
func (c *Controller) FinishSend(ctx context.Context, ex *Exchange) error {
	result, err := c.api.Chat(ctx, ex.Question)

	var reply string
	if err != nil {
		reply = "Error: " + err.Error()
	} else {
		reply = result.Response
	}

	c.update(func(s *State) {
		var found bool
		s.Messages, found = removeMessage(s.Messages, ex.placeholderID)
		// a reset while the request was out already cleared the log
		if found {
			s.Messages = append(s.Messages, newMessage(RoleBot, reply))
		}
		s.Processing = false
		s.SendEnabled = true
	})
	return err
}

// SendMessage is StartSend followed by FinishSend. It reports whether a request was issued.
func (c *Controller) SendMessage(ctx context.Context, text string) (bool, error) {
	ex, ok := c.StartSend(text)
	if !ok {
		return false, nil
	}
	return true, c.FinishSend(ctx, ex)
}

// Reset asks for confirmation, clears the backend session and returns the view
// to its initial state. It reports whether the reset happened. While an upload
// or another reset is outstanding it does nothing, without asking.
func (c *Controller) Reset(ctx context.Context) (bool, error) {
	if c.isBusy() {
		return false, nil
	}
	if !c.prompter.Confirm(ResetQuestion) {
		return false, nil
	}

	c.mu.Lock()
	if c.busy {
		// an upload started while the question was open
		c.mu.Unlock()
		c.prompter.Alert(busyAlert)
		return false, nil
	}
	c.busy = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if err := c.api.Reset(ctx); err != nil {
		c.prompter.Alert("Error resetting: " + err.Error())
		return false, err
	}

	c.update(func(s *State) {
		processing := s.Processing
		*s = initialState()
		s.Processing = processing
		s.SendEnabled = !processing
	})
	return true, nil
}

func (c *Controller) isBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// CheckStatus restores the chat view when the backend already holds a document.
// Failures are logged and the view stays in upload mode.
func (c *Controller) CheckStatus(ctx context.Context) bool {
	status, err := c.api.Status(ctx)
	if err != nil {
		if client.IsAPIError(err) {
			log.Printf("Backend not responding: %v", err)
		} else {
			log.Printf("Error checking status - make sure backend is running: %v", err)
		}
		return false
	}
	if !status.HasDocument {
		return false
	}

	c.update(func(s *State) {
		s.DocLabel = DocumentLabel(status.Filename, status.Chunks)
		s.Mode = ModeChat
	})
	return true
}

// DocumentLabel formats the header shown above the chat
func DocumentLabel(filename string, chunks int) string {
	return fmt.Sprintf("📄 %s (%d chunks)", filename, chunks)
}

func removeMessage(messages []Message, id string) ([]Message, bool) {
	out := messages[:0]
	found := false
	for _, m := range messages {
		if m.ID == id {
			found = true
			continue
		}
		out = append(out, m)
	}
	return out, found
}
