package core

import "context"

// MLService 是外部推理服务（service.KServeClient）。
// model.ServiceModel 把特征矩阵按 schema 词表编码成稠密向量后调用它。
type MLService interface {
	// Predict 返回的 Predictions 与 Instances 一一对应
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)
	Health(ctx context.Context) error
	Close() error
}

// MLPredictRequest Instances 每行按模型列顺序排列
type MLPredictRequest struct {
	Instances    [][]float64
	ModelName    string // 空则用客户端默认
	ModelVersion string
}

// MLPredictResponse 推理结果
type MLPredictResponse struct {
	Predictions  []float64
	ModelVersion string
}
