package store

import "fmt"

// FilesExtending returns the IDs of script files whose type inherits,
// directly or transitively, from typeName. Editing typeName's script can
// change what is inferred in any of them.
func (s *Store) FilesExtending(typeName string) ([]int64, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE sub(type_name, file_id) AS (
			SELECT type_name, file_id FROM script_types WHERE base_type = ?
			UNION
			SELECT st.type_name, st.file_id
			FROM script_types st JOIN sub ON st.base_type = sub.type_name
		)
		SELECT DISTINCT file_id FROM sub ORDER BY file_id`, typeName)
	if err != nil {
		return nil, fmt.Errorf("files extending: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan file id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
