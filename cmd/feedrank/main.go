// feedrank 是帖子推荐服务的命令行入口。
//
//	feedrank serve --config config.yaml
//	feedrank check --config config.yaml
package main

func main() {
	Execute()
}
