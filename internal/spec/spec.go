// Package spec holds the on-disk shape of a pipeline file.
package spec

// Stage is one transform in a pipeline file. Args lists the chains that feed
// the stage's extra parameters (the key of an hmac, say); the primary input
// is always the previous stage.
type Stage struct {
	Fn      string            `yaml:"fn"`
	Invert  bool              `yaml:"invert"`
	Options map[string]string `yaml:"options"`
	Args    [][]Stage         `yaml:"args"`
}

type StdoutConfig struct {
	Newline bool `yaml:"newline"`
}

type FileSinkConfig struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"` // octal, default 0644
}

type sinkConfigs struct {
	Stdout StdoutConfig   `yaml:"stdout"`
	File   FileSinkConfig `yaml:"file"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	// Chain is a chain expression. It is mutually exclusive with Stages.
	Chain  string  `yaml:"chain"`
	Stages []Stage `yaml:"stages"`

	// ChunkSize is the size the runner drains the final stream with.
	ChunkSize int `yaml:"chunk_size"`

	Sinks       []string    `yaml:"sinks"`
	SinkConfigs sinkConfigs `yaml:"sink_configs"`

	// Dir is the directory the file was loaded from. Relative paths in
	// stage options and sink configs resolve against it.
	Dir string `yaml:"-"`
}
