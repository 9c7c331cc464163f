package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/memora-app/memora/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.New("not found")

// Memory is an in-memory repository for tests and local development
type Memory struct {
	container  *containerRepository
	source     *sourceRepository
	transcript *transcriptRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		container:  newContainerRepository(),
		source:     newSourceRepository(),
		transcript: newTranscriptRepository(),
	}
}

func (m *Memory) Container() interfaces.ContainerRepository {
	return m.container
}

func (m *Memory) Source() interfaces.SourceRepository {
	return m.source
}

func (m *Memory) Transcript() interfaces.TranscriptRepository {
	return m.transcript
}

func (m *Memory) Close() error {
	return nil
}
