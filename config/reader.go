package config

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"reflect"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/flange/logging"
	"go.viam.com/flange/referenceframe"
)

// Read reads a config from the given file. Environment variables in the file are expanded
// before parsing.
func Read(filePath string, logger logging.Logger) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader, logger logging.Logger) (*Config, error) {
	var attributes map[string]interface{}
	if err := json.NewDecoder(r).Decode(&attributes); err != nil {
		return nil, errors.Wrap(err, "failed to decode Config from json")
	}

	cfg := Config{ConfigFilePath: originalPath}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		Metadata:         &md,
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			poseArrayHook,
			frameDegreesHook,
		),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "failed to process Config")
	}
	if len(md.Unused) > 0 {
		logger.Warnw("ignoring unknown config keys", "path", originalPath, "keys", md.Unused)
	}
	return &cfg, nil
}

var (
	poseConfigType  = reflect.TypeOf(PoseConfig{})
	frameConfigType = reflect.TypeOf(referenceframe.FrameConfig{})
)

// poseArrayHook decodes [x, y, z, rx, ry, rz] into a PoseConfig.
func poseArrayHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != poseConfigType || (from.Kind() != reflect.Slice && from.Kind() != reflect.Array) {
		return data, nil
	}
	items, ok := data.([]interface{})
	if !ok {
		return data, nil
	}
	if len(items) != 6 {
		return nil, errors.Errorf("pose array needs 6 values, got %d", len(items))
	}
	v := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, errors.Wrapf(err, "pose value %d", i)
		}
		v[i] = f
	}
	return PoseConfig{
		Translation: Translation{X: v[0], Y: v[1], Z: v[2]},
		Euler:       Euler{X: v[3], Y: v[4], Z: v[5]},
	}, nil
}

// frameDegreesHook lets a frame give alpha_deg and theta_deg in place of alpha and theta.
func frameDegreesHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != frameConfigType || from.Kind() != reflect.Map {
		return data, nil
	}
	in, ok := data.(map[string]interface{})
	if !ok {
		return data, nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	for _, key := range []string{"alpha", "theta"} {
		deg, ok := out[key+"_deg"]
		if !ok {
			continue
		}
		if _, both := out[key]; both {
			return nil, errors.Errorf("frame sets both %s and %s_deg", key, key)
		}
		f, err := toFloat(deg)
		if err != nil {
			return nil, errors.Wrapf(err, "%s_deg", key)
		}
		out[key] = f * math.Pi / 180
		delete(out, key+"_deg")
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, errors.Errorf("expected a number, got %T", v)
}
