package lifx

import (
	"encoding/json"
	"net/http"

	"github.com/go-openapi/runtime/middleware/header"
	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Response is a successful (2xx) API response with its body already read
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.  Bodies the server labels as
// something other than JSON give a KindSerialization error.
func (r *Response) Decode(v interface{}) error {
	if r.Header.Get("Content-Type") != "" {
		value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
		if value != "application/json" {
			return &Error{Kind: KindSerialization, Status: r.StatusCode, Err: errors.Errorf("expected JSON response, got %s", value)}
		}
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return &Error{Kind: KindSerialization, Status: r.StatusCode, Err: err}
	}

	return nil
}

// Lights decodes the body of a light listing
func (r *Response) Lights() ([]Light, error) {
	var lights []Light
	if err := r.Decode(&lights); err != nil {
		return nil, err
	}
	return lights, nil
}

// Scenes decodes the body of a scene listing
func (r *Response) Scenes() ([]Scene, error) {
	var scenes []Scene
	if err := r.Decode(&scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// Results returns the per light outcomes of a command.  Responses without a
// results array (202 Accepted for fast requests) give an empty list.
func (r *Response) Results() []Result {
	var results []Result
	collectResults(gjson.GetBytes(r.Body, "results"), &results)
	return results
}

// set_states nests a results array inside each operation
func collectResults(arr gjson.Result, results *[]Result) {
	arr.ForEach(func(_, v gjson.Result) bool {
		if nested := v.Get("results"); nested.IsArray() {
			collectResults(nested, results)
			return true
		}

		*results = append(*results, Result{
			ID:     v.Get("id").String(),
			Label:  v.Get("label").String(),
			Status: Reachability(v.Get("status").String()),
		})
		return true
	})
}

// Reachability is the delivery status of a command to one light
type Reachability string

const (
	// the light received the command
	Reachable Reachability = "ok"
	// the light did not acknowledge the command
	TimedOut Reachability = "timed_out"
	// the light is powered off at the wall or off the network
	Offline Reachability = "offline"
)

type Result struct {
	ID     string
	Label  string
	Status Reachability
}

type HSBK struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Kelvin     uint16  `json:"kelvin"`
}

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Capabilities struct {
	HasColor             bool   `json:"has_color"`
	HasVariableColorTemp bool   `json:"has_variable_color_temp"`
	HasIR                bool   `json:"has_ir"`
	HasChain             bool   `json:"has_chain"`
	HasMultizone         bool   `json:"has_multizone"`
	MinKelvin            uint16 `json:"min_kelvin"`
	MaxKelvin            uint16 `json:"max_kelvin"`
}

type ProductInfo struct {
	Name         string       `json:"name"`
	Identifier   string       `json:"identifier"`
	Company      string       `json:"company"`
	VendorID     uint32       `json:"vendor_id"`
	ProductID    uint32       `json:"product_id"`
	Capabilities Capabilities `json:"capabilities"`
}

// Light is one entry of GET /lights/{selector}
type Light struct {
	ID               string          `json:"id"`
	UUID             string          `json:"uuid"`
	Label            string          `json:"label"`
	Connected        bool            `json:"connected"`
	Power            Power           `json:"power"`
	Color            HSBK            `json:"color"`
	Brightness       float64         `json:"brightness"`
	Effect           string          `json:"effect,omitempty"`
	Group            Ref             `json:"group"`
	Location         Ref             `json:"location"`
	Product          ProductInfo     `json:"product"`
	LastSeen         strfmt.DateTime `json:"last_seen"`
	SecondsSinceSeen float64         `json:"seconds_since_seen"`
}

// Selector addresses just this light
func (l Light) Selector() Selector {
	return ID(l.ID)
}

// KnownProduct looks the light's hardware up in the product catalog
func (l Light) KnownProduct() (Product, bool) {
	return LookupProduct(l.Product.VendorID, l.Product.ProductID)
}

// SceneState is the stored state of one selector within a scene
type SceneState struct {
	Selector   string   `json:"selector"`
	Power      *Power   `json:"power,omitempty"`
	Brightness *float64 `json:"brightness,omitempty"`
	Color      *HSBK    `json:"color,omitempty"`
}

// Scene is one entry of GET /scenes
type Scene struct {
	UUID      string       `json:"uuid"`
	Name      string       `json:"name"`
	States    []SceneState `json:"states"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
}

// ColorInfo is the server's interpretation of a color string, from
// GET /color.  Components the string does not set are nil.
type ColorInfo struct {
	Hue        *float64 `json:"hue"`
	Saturation *float64 `json:"saturation"`
	Brightness *float64 `json:"brightness"`
	Kelvin     *uint16  `json:"kelvin"`
}

func (r *Response) ColorInfo() (ColorInfo, error) {
	var info ColorInfo
	err := r.Decode(&info)
	return info, err
}
