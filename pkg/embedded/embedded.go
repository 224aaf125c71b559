// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的关卡、脚本和默认配置。
//
// 未调用 Init() 时所有读取都回退到磁盘。
package embedded

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// 可嵌入的资源目录前缀
var resourcePrefixes = []string{"data/", "scripts/", "config/"}

var (
	resourceFS  fs.FS
	initialized bool
)

// Init 设置嵌入资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(fsys fs.FS) {
	resourceFS = fsys
	initialized = fsys != nil
}

// normalize 标准化路径并检查前缀
func normalize(path string) (string, error) {
	// embed.FS 使用正斜杠
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	for _, prefix := range resourcePrefixes {
		if strings.HasPrefix(path, prefix) {
			return path, nil
		}
	}
	return "", fmt.Errorf("unknown resource path prefix: %s (must start with one of %v)", path, resourcePrefixes)
}

// ReadEmbedded 只从嵌入资源读取
func ReadEmbedded(path string) ([]byte, error) {
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}
	name, err := normalize(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(resourceFS, name)
}

// ReadFile 读取资源文件
//
// 优先读取磁盘文件（方便修改关卡后直接运行），不存在时回退到嵌入资源。
func ReadFile(path string) ([]byte, error) {
	data, diskErr := os.ReadFile(path)
	if diskErr == nil {
		return data, nil
	}
	if !initialized || !os.IsNotExist(diskErr) {
		return nil, diskErr
	}

	data, err := ReadEmbedded(path)
	if err != nil {
		return nil, fmt.Errorf("%w (embedded: %v)", diskErr, err)
	}
	return data, nil
}
