package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Container() ContainerRepository
	Source() SourceRepository
	Transcript() TranscriptRepository

	Close() error
}
