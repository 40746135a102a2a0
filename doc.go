// Package feedrank 是帖子推荐服务：为用户从预计算的帖子特征表中挑选最可能点赞的帖子。
//
// 打分链路由 pipeline 串联：
//
//	recall.TableRecall → filter.FilterNode（可选，CEL 表达式）→ rank.ModelNode → rerank.TopNNode
//
// 启动装配见 app 包，命令行入口见 cmd/feedrank。
package feedrank
