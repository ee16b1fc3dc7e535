package config

import "texed/common"

// Unique reports whether generated blocks should receive unique labels.
func (conf *DocumentConfig) Unique() bool {
	return conf.Labels == common.LabelModeUnique
}
