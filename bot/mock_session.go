/* mock_session.go
 * Contains mock implementation of DiscordSession for testing
 */

package bot

import (
	"io"

	"github.com/bwmarrin/discordgo"
)

// MockDiscordSession implements DiscordSession for testing purposes
type MockDiscordSession struct {
	// SentMessages stores all messages sent during tests
	SentMessages []MockMessage
	// SentFiles stores all uploads
	SentFiles []MockFile
	// ErrorToReturn allows tests to simulate errors
	ErrorToReturn error
}

// MockMessage represents a message sent to a channel
type MockMessage struct {
	ChannelID string
	Content   string
}

// MockFile represents a file uploaded to a channel
type MockFile struct {
	ChannelID string
	Name      string
	Data      []byte
}

// ChannelMessageSend implements DiscordSession.ChannelMessageSend
func (m *MockDiscordSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}

	m.SentMessages = append(m.SentMessages, MockMessage{
		ChannelID: channelID,
		Content:   content,
	})

	return &discordgo.Message{
		ID:        "mock_message_id",
		ChannelID: channelID,
		Content:   content,
	}, nil
}

// ChannelFileSend implements DiscordSession.ChannelFileSend
func (m *MockDiscordSession) ChannelFileSend(channelID, name string, r io.Reader, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.SentFiles = append(m.SentFiles, MockFile{ChannelID: channelID, Name: name, Data: data})
	return &discordgo.Message{ID: "mock_file_id", ChannelID: channelID}, nil
}

// GetLastMessage returns the last message sent, or empty MockMessage if none
func (m *MockDiscordSession) GetLastMessage() MockMessage {
	if len(m.SentMessages) == 0 {
		return MockMessage{}
	}
	return m.SentMessages[len(m.SentMessages)-1]
}

// GetLastFile returns the last file uploaded, or empty MockFile if none
func (m *MockDiscordSession) GetLastFile() MockFile {
	if len(m.SentFiles) == 0 {
		return MockFile{}
	}
	return m.SentFiles[len(m.SentFiles)-1]
}

// ClearMessages clears all stored messages and files
func (m *MockDiscordSession) ClearMessages() {
	m.SentMessages = nil
	m.SentFiles = nil
}

// NewMockDiscordSession creates a new MockDiscordSession for testing
func NewMockDiscordSession() *MockDiscordSession {
	return &MockDiscordSession{
		SentMessages: make([]MockMessage, 0),
	}
}
