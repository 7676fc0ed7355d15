package server

// StorageServerConfig selects and configures the object store holding file bytes.
// Every object lives in the single bucket named here.
type StorageServerConfig struct {
	Type   string             `mapstructure:"type"   yaml:"type"`
	Bucket string             `mapstructure:"bucket" yaml:"bucket"`
	Local  StorageLocalConfig `mapstructure:"local"  yaml:"local"`
	S3     StorageS3Config    `mapstructure:"s3"     yaml:"s3"`
}

type StorageLocalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type StorageS3Config struct {
	Endpoint  string `mapstructure:"endpoint"   yaml:"endpoint"`
	Region    string `mapstructure:"region"     yaml:"region"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"    yaml:"use_ssl"`
}
