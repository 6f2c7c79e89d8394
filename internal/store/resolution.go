package store

import "fmt"

// --- ScriptType operations ---

func (s *Store) InsertScriptType(st *ScriptType) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO script_types (file_id, type_name, class_name, base_type, scene_path)
		 VALUES (?, ?, ?, ?, ?)`,
		st.FileID, st.TypeName, st.ClassName, st.BaseType, st.ScenePath,
	)
	if err != nil {
		return 0, fmt.Errorf("insert script type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	st.ID = id
	return id, nil
}

func (s *Store) queryScriptTypes(query string, args ...any) ([]*ScriptType, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ScriptType
	for rows.Next() {
		st := &ScriptType{}
		if err := rows.Scan(&st.ID, &st.FileID, &st.TypeName, &st.ClassName, &st.BaseType, &st.ScenePath); err != nil {
			return nil, fmt.Errorf("scan script type: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

const scriptTypeCols = "id, file_id, type_name, class_name, base_type, scene_path"

func (s *Store) ScriptTypes() ([]*ScriptType, error) {
	return s.queryScriptTypes("SELECT " + scriptTypeCols + " FROM script_types ORDER BY type_name")
}

// ScriptTypeByName looks a script up by class_name or res:// path.
func (s *Store) ScriptTypeByName(name string) (*ScriptType, error) {
	out, err := s.queryScriptTypes("SELECT "+scriptTypeCols+" FROM script_types WHERE type_name = ? LIMIT 1", name)
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return out[0], nil
}

// ScriptTypesByBase returns the scripts whose direct base is base.
func (s *Store) ScriptTypesByBase(base string) ([]*ScriptType, error) {
	return s.queryScriptTypes("SELECT "+scriptTypeCols+" FROM script_types WHERE base_type = ? ORDER BY type_name", base)
}

// --- SignalConnection operations ---

func (s *Store) InsertSignalConnection(c *SignalConnection) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO signal_connections (file_id, signal_name, method, callback_class, line, col, confidence, is_scene)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FileID, c.SignalName, c.Method, c.CallbackClass, c.Line, c.Col, c.Confidence, c.IsScene,
	)
	if err != nil {
		return 0, fmt.Errorf("insert signal connection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	c.ID = id
	return id, nil
}

// SignalConnections returns connections whose callback is method, or
// every connection when method is empty.
func (s *Store) SignalConnections(method string) ([]*SignalConnection, error) {
	query := `SELECT id, file_id, signal_name, method, callback_class, line, col, confidence, is_scene
		FROM signal_connections`
	var args []any
	if method != "" {
		query += " WHERE method = ?"
		args = append(args, method)
	}
	rows, err := s.db.Query(query+" ORDER BY file_id, line, col", args...)
	if err != nil {
		return nil, fmt.Errorf("signal connections: %w", err)
	}
	defer rows.Close()
	var out []*SignalConnection
	for rows.Next() {
		c := &SignalConnection{}
		if err := rows.Scan(&c.ID, &c.FileID, &c.SignalName, &c.Method, &c.CallbackClass,
			&c.Line, &c.Col, &c.Confidence, &c.IsScene); err != nil {
			return nil, fmt.Errorf("scan signal connection: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
