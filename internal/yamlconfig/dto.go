package yamlconfig

// yamlFile is the root of a YAML network file.
type yamlFile struct {
	Networks []yamlNetwork `yaml:"networks"`
}

type yamlNetwork struct {
	Name string `yaml:"name"`

	Arch                  *string  `yaml:"arch"`
	BatchNorm             *bool    `yaml:"batch_norm"`
	Skips                 []string `yaml:"skips"`
	BilateralNeighborhood *int     `yaml:"bilateral_neighborhood"`
	ConvFiller            *string  `yaml:"conv_filler"`
	BilateralFiller       *string  `yaml:"bilateral_filler"`

	Dataset       *string        `yaml:"dataset"`
	DatasetParams map[string]any `yaml:"dataset_params"`
	Category      *string        `yaml:"category"`
	SampleSize    *int           `yaml:"sample_size"`
	BatchSize     *int           `yaml:"batch_size"`

	FeatDims *string  `yaml:"feat_dims"`
	Lattices []string `yaml:"lattices"`

	Combined    *bool `yaml:"combined"`
	RenormClass *bool `yaml:"renorm_class"`
	RenormHead  *bool `yaml:"renorm_head"`
	Deploy      *bool `yaml:"deploy"`

	Output *yamlOutput `yaml:"output"`
}

type yamlOutput struct {
	Path      string        `yaml:"path"`
	Render    string        `yaml:"render"`
	UploadURL string        `yaml:"upload_url"`
	SocketIO  *yamlSocketIO `yaml:"socketio"`
}

type yamlSocketIO struct {
	URL                string `yaml:"url"`
	Namespace          string `yaml:"namespace"`
	Event              string `yaml:"event"`
	AckEvent           string `yaml:"ack_event"`
	Timeout            string `yaml:"timeout"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}
