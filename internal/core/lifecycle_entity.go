package core

// LifecycleEntity is implemented by every resource kind that carries a
// per-resource lifecycle tag, letting internal/lifecycle filter
// candidate changes without switching on concrete types.
type LifecycleEntity interface {
	GetLifeCycle() LifeCycle
}

func (t *Table) GetLifeCycle() LifeCycle                { return t.LifeCycle }
func (t *Topic) GetLifeCycle() LifeCycle                { return t.LifeCycle }
func (a *ApiEndpoint) GetLifeCycle() LifeCycle           { return a.LifeCycle }
func (v *View) GetLifeCycle() LifeCycle                 { return v.LifeCycle }
func (mv *MaterializedView) GetLifeCycle() LifeCycle    { return mv.LifeCycle }
func (s *SqlResource) GetLifeCycle() LifeCycle          { return s.LifeCycle }
func (s *SyncProcess) GetLifeCycle() LifeCycle          { return s.LifeCycle }
func (f *FunctionProcess) GetLifeCycle() LifeCycle      { return f.LifeCycle }
func (o *OrchestrationWorker) GetLifeCycle() LifeCycle  { return o.LifeCycle }
func (w *WebApp) GetLifeCycle() LifeCycle               { return w.LifeCycle }
func (w *Workflow) GetLifeCycle() LifeCycle             { return w.LifeCycle }
