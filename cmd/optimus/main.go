// optimus 课表命令行工具：离线读取 CSV / TSV / XLSX 课表文件，
// 输出归一化记录、冲突列表或共同空闲时间，不依赖数据库。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
