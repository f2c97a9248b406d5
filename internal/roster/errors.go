package roster

import "errors"

var (
	// ErrEmptyRoster 空班表不允许发布
	ErrEmptyRoster = errors.New("班表中没有任何排班，不能发布")
	// ErrSessionNotReady 会话还在加载中或加载失败，不能执行编辑操作
	ErrSessionNotReady = errors.New("编辑会话尚未就绪")
	// ErrSessionClosed 会话已经被关闭
	ErrSessionClosed = errors.New("编辑会话已关闭")
	// ErrSaveInFlight 已经有一次保存正在执行
	ErrSaveInFlight = errors.New("保存正在进行中，请稍后重试")
	// ErrSlotNotFound 指定的槽位不存在于当前班表中
	ErrSlotNotFound = errors.New("指定的排班记录不存在")
	// ErrShiftNotFound 会话指向的班次不存在或未启用
	ErrShiftNotFound = errors.New("班次不存在或未启用")
)
