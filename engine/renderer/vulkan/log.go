package vulkan

import "github.com/spaghettifunk/vkr/engine/core"

func logged(err error) error {
	core.LogError(err.Error())
	return err
}
