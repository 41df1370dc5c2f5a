package file

import (
	"sync"

	"github.com/go-gota/gota/dataframe"
)

// Dataset 封装数据集DataFrame：首次访问时加载，之后整个进程复用
type Dataset struct {
	path      string
	sheetName string

	once sync.Once
	df   dataframe.DataFrame // 存储DataFrame数据
	err  error
	gen  uint64 // 每次替换数据后加一
	mu   sync.RWMutex // 读写锁保证线程安全
}

// NewDataset 创建数据集，不会立即读取文件
func NewDataset(path, sheetName string) *Dataset {
	return &Dataset{path: path, sheetName: sheetName}
}

func (d *Dataset) Path() string { return d.path }

// GetDF 获取当前DataFrame(线程安全)，首次调用时加载
func (d *Dataset) GetDF() (dataframe.DataFrame, error) {
	df, _, err := d.Snapshot()
	return df, err
}

// Snapshot 同时返回数据和它的版本号，版本号随 SetDF/Reload 递增
func (d *Dataset) Snapshot() (dataframe.DataFrame, uint64, error) {
	d.once.Do(func() {
		df, err := Load(d.path, d.sheetName)
		d.mu.Lock()
		d.df, d.err = df, err
		d.gen++
		d.mu.Unlock()
	})

	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.df, d.gen, d.err
}

// SetDF 替换当前DataFrame(线程安全)
func (d *Dataset) SetDF(df dataframe.DataFrame) {
	d.once.Do(func() {})
	d.mu.Lock()
	defer d.mu.Unlock()
	d.df, d.err = df, nil
	d.gen++
}

// Reload 重新读取文件；失败时保留旧数据
func (d *Dataset) Reload() error {
	df, err := Load(d.path, d.sheetName)
	if err != nil {
		return err
	}
	d.SetDF(df)
	return nil
}
