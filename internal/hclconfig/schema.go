package hclconfig

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a file.
type fileRoot struct {
	Networks []*networkBlock `hcl:"network,block"`
}

// networkBlock is the HCL schema of a `network` block. Optional attributes
// are pointers so an omitted attribute keeps its builder default.
type networkBlock struct {
	Name string `hcl:"name,label"`

	Arch                  *string  `hcl:"arch,optional"`
	BatchNorm             *bool    `hcl:"batch_norm,optional"`
	Skips                 []string `hcl:"skips,optional"`
	BilateralNeighborhood *int     `hcl:"bilateral_neighborhood,optional"`
	ConvFiller            *string  `hcl:"conv_filler,optional"`
	BilateralFiller       *string  `hcl:"bilateral_filler,optional"`

	Dataset       *string        `hcl:"dataset,optional"`
	DatasetParams hcl.Expression `hcl:"dataset_params,optional"`
	Category      *string        `hcl:"category,optional"`
	SampleSize    *int           `hcl:"sample_size,optional"`
	BatchSize     *int           `hcl:"batch_size,optional"`

	FeatDims *string  `hcl:"feat_dims,optional"`
	Lattices []string `hcl:"lattices,optional"`

	Combined    *bool `hcl:"combined,optional"`
	RenormClass *bool `hcl:"renorm_class,optional"`
	RenormHead  *bool `hcl:"renorm_head,optional"`
	Deploy      *bool `hcl:"deploy,optional"`

	// Remain holds the `output` block, decoded separately so a repeated
	// block gets a precise diagnostic.
	Remain hcl.Body `hcl:",remain"`
}

// outputBlock is the HCL schema of an `output` block.
type outputBlock struct {
	Path      string         `hcl:"path,optional"`
	Render    string         `hcl:"render,optional"`
	UploadURL string         `hcl:"upload_url,optional"`
	SocketIO  *socketIOBlock `hcl:"socketio,block"`
}

type socketIOBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	AckEvent           string `hcl:"ack_event,optional"`
	Timeout            string `hcl:"timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

var remainSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "output"}},
}
